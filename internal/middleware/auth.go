package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/jeraldtan21/cts/internal/model"
	"github.com/jeraldtan21/cts/pkg/errors"
)

// TokenResolver turns a bearer credential into the identity it names.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.Identity, error)
}

// AuthMiddleware authenticates requests and enforces roles.
type AuthMiddleware struct {
	resolver TokenResolver
	logger   *log.Logger
}

func NewAuthMiddleware(resolver TokenResolver, logger *log.Logger) *AuthMiddleware {
	if logger == nil {
		logger = log.Default()
	}
	return &AuthMiddleware{resolver: resolver, logger: logger}
}

// Authenticate requires "Authorization: Bearer <token>" and attaches the
// identity to the request context. The identity is looked up on every
// request.
func (am *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			WriteError(w, errors.UnauthorizedError("missing or malformed authorization header"))
			return
		}

		identity, err := am.resolver.ResolveToken(r.Context(), token)
		if err != nil {
			appErr, isApp := errors.AsAppError(err)
			if !isApp {
				appErr = errors.InternalError("failed to authenticate request", err)
			}
			if appErr.GetHTTPStatus() >= http.StatusInternalServerError {
				am.logger.Printf("Authentication lookup failed: %v", err)
			}
			WriteError(w, appErr)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireRole rejects authenticated identities whose role is not listed.
// It must run after Authenticate.
func (am *AuthMiddleware) RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, errors.UnauthorizedError("authentication required"))
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, errors.ForbiddenError("insufficient permissions"))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
