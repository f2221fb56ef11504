package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeraldtan21/cts/internal/clock"
	"github.com/jeraldtan21/cts/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testIdentity() model.Identity {
	return model.Identity{ID: uuid.New(), Email: "a@x.com", Name: "Alice", Role: model.RoleAdmin}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	clk := clock.Fixed()
	tm := NewTokenManager(testSecret, "cts", time.Hour, clk)
	identity := testIdentity()

	token, expiresAt, err := tm.Issue(identity)
	require.NoError(t, err)
	assert.Equal(t, clk.Now().Add(time.Hour), expiresAt)

	id, claims, err := tm.Parse(token)

	require.NoError(t, err)
	assert.Equal(t, identity.ID, id)
	assert.Equal(t, model.RoleAdmin, claims.Role)
	assert.Equal(t, "cts", claims.Issuer)
}

func TestTokenManager_Rejects(t *testing.T) {
	identity := testIdentity()

	tests := []struct {
		name  string
		token func(t *testing.T, clk *clock.Stub) string
	}{
		{
			name: "expired",
			token: func(t *testing.T, clk *clock.Stub) string {
				token, _, err := NewTokenManager(testSecret, "cts", time.Minute, clk).Issue(identity)
				require.NoError(t, err)
				clk.Advance(2 * time.Minute)
				return token
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T, clk *clock.Stub) string {
				token, _, err := NewTokenManager("another-secret-another-secret-xx", "cts", time.Hour, clk).Issue(identity)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T, clk *clock.Stub) string {
				token, _, err := NewTokenManager(testSecret, "someone-else", time.Hour, clk).Issue(identity)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "garbage",
			token: func(t *testing.T, clk *clock.Stub) string {
				return "not.a.token"
			},
		},
		{
			name: "unsigned",
			token: func(t *testing.T, clk *clock.Stub) string {
				claims := jwt.RegisteredClaims{
					Subject:   identity.ID.String(),
					Issuer:    "cts",
					ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
				}
				token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "subject not a uuid",
			token: func(t *testing.T, clk *clock.Stub) string {
				claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "42",
					Issuer:    "cts",
					ExpiresAt: jwt.NewNumericDate(clk.Now().Add(time.Hour)),
				}}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return token
			},
		},
		{
			name: "no expiry",
			token: func(t *testing.T, clk *clock.Stub) string {
				claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
					Subject: identity.ID.String(),
					Issuer:  "cts",
				}}
				token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
				require.NoError(t, err)
				return token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := clock.Fixed()
			token := tt.token(t, clk)
			tm := NewTokenManager(testSecret, "cts", time.Hour, clk)

			_, _, err := tm.Parse(token)

			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cretpass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", hash)

	assert.NoError(t, h.Compare(hash, "s3cretpass"))
	assert.ErrorIs(t, h.Compare(hash, "wrong-pass"), ErrPasswordMismatch)
	assert.ErrorIs(t, h.Compare("not-a-hash", "s3cretpass"), ErrPasswordMismatch)
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(99).cost)
	assert.Equal(t, 12, NewPasswordHasher(12).cost)
}
