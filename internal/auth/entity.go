package auth

import "context"

type ctxKey struct{}

// WithIdentity stores the authenticated email on ctx.
func WithIdentity(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxKey{}, email)
}

// IdentityFromContext returns the email placed by RequireBearer.
func IdentityFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKey{}).(string)
	return v, ok && v != ""
}
