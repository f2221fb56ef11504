package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jeraldtan21/cts/internal/clock"
	"github.com/jeraldtan21/cts/internal/model"
)

// ErrInvalidToken covers every reason a credential is rejected: bad
// signature, wrong issuer, expiry, or a malformed subject.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carried by an issued credential. The subject is the identity id.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 credentials.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

func NewTokenManager(secret, issuer string, ttl time.Duration, clk clock.Clock) *TokenManager {
	if clk == nil {
		clk = clock.Real{}
	}
	return &TokenManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		clock:  clk,
	}
}

// Issue signs a credential for identity. It also returns the expiry.
func (m *TokenManager) Issue(identity model.Identity) (string, time.Time, error) {
	now := m.clock.Now()
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID.String(),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies tokenString and returns the identity id it names.
func (m *TokenManager) Parse(tokenString string) (uuid.UUID, *Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.clock.Now),
	)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, claims, nil
}
