package middleware

import (
	"context"

	"github.com/jeraldtan21/cts/internal/model"
)

// contextKey is unexported so no other package can collide with it.
type contextKey string

const (
	clientIPKey contextKey = "client_ip"
	identityKey contextKey = "identity"
)

// ClientIP returns the address recorded by TrustedProxy.
func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// WithIdentity attaches the authenticated identity to ctx.
func WithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the identity attached by Authenticate.
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*model.Identity)
	return identity, ok && identity != nil
}
