// Package tags serves the small, low-churn tag reference list.
package tags

import "github.com/google/uuid"

// Tag is a content tag available across the platform.
type Tag struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
