package authn

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Profile is the subset of the userinfo response this service reads.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ProfileClient fetches the caller's profile from the identity provider's
// userinfo endpoint. Used only on first login when the token itself does
// not carry an email claim.
type ProfileClient struct {
	url    string
	client *http.Client
}

// NewProfileClient constructs a ProfileClient for the given provider domain.
func NewProfileClient(domain string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{
		url:    "https://" + domain + "/userinfo",
		client: &http.Client{Timeout: timeout},
	}
}

// NewProfileClientURL constructs a ProfileClient against an explicit URL.
func NewProfileClientURL(url string, timeout time.Duration) *ProfileClient {
	return &ProfileClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the profile for the bearer token's subject.
func (c *ProfileClient) Fetch(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProfileFetchFailed, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetchFailed, err)
	}
	return &profile, nil
}
