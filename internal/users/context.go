package users

import "context"

type identityContextKey struct{}

// ContextWithIdentity stores the authenticated user in context.
func ContextWithIdentity(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, identityContextKey{}, user)
}

// IdentityFromContext extracts the authenticated user from context.
// Returns nil when the request did not pass authentication.
func IdentityFromContext(ctx context.Context) *User {
	user, _ := ctx.Value(identityContextKey{}).(*User)
	return user
}
