package auth

import (
	"testing"
	"time"

	"github.com/studiobeleza/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-at-least-32-chars-long"

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret: testSecret,
		Issuer: "identity-service",
	})
}

// signToken mints a token the way the identity service would.
func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(tokenType TokenType, issued time.Time, ttl time.Duration) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    "identity-service",
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			NotBefore: jwt.NewNumericDate(issued),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
		TenantID:  uuid.New().String(),
		UserID:    uuid.New().String(),
		Username:  "rececionista",
		TokenType: tokenType,
	}
}

func TestJWTService_ValidateAccessToken(t *testing.T) {
	svc := newTestService()
	claims := validClaims(TokenTypeAccess, time.Now(), 15*time.Minute)
	tokenString := signToken(t, claims, testSecret)

	parsed, err := svc.ValidateAccessToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, claims.TenantID, parsed.TenantID)
	assert.Equal(t, claims.UserID, parsed.UserID)
	assert.Equal(t, "rececionista", parsed.Username)
	assert.Equal(t, TokenTypeAccess, parsed.TokenType)
}

func TestJWTService_ValidateAccessToken_Expired(t *testing.T) {
	svc := newTestService()
	claims := validClaims(TokenTypeAccess, time.Now().Add(-time.Hour), 15*time.Minute)
	tokenString := signToken(t, claims, testSecret)

	_, err := svc.ValidateAccessToken(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateAccessToken_NotYetValid(t *testing.T) {
	svc := newTestService()
	claims := validClaims(TokenTypeAccess, time.Now().Add(time.Hour), 15*time.Minute)
	tokenString := signToken(t, claims, testSecret)

	_, err := svc.ValidateAccessToken(tokenString)
	assert.ErrorIs(t, err, ErrTokenNotYetValid)
}

func TestJWTService_ValidateAccessToken_WrongSecret(t *testing.T) {
	svc := newTestService()
	claims := validClaims(TokenTypeAccess, time.Now(), 15*time.Minute)
	tokenString := signToken(t, claims, "another-secret-with-32-characters!!")

	_, err := svc.ValidateAccessToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateAccessToken_RejectsRefreshToken(t *testing.T) {
	svc := newTestService()
	claims := validClaims(TokenTypeRefresh, time.Now(), time.Hour)
	tokenString := signToken(t, claims, testSecret)

	_, err := svc.ValidateAccessToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestJWTService_ValidateAccessToken_RequiresTenant(t *testing.T) {
	svc := newTestService()
	claims := validClaims(TokenTypeAccess, time.Now(), 15*time.Minute)
	claims.TenantID = ""
	tokenString := signToken(t, claims, testSecret)

	_, err := svc.ValidateAccessToken(tokenString)
	assert.ErrorIs(t, err, ErrMissingTenantID)
}

func TestJWTService_ValidateAccessToken_RequiresUser(t *testing.T) {
	svc := newTestService()
	claims := validClaims(TokenTypeAccess, time.Now(), 15*time.Minute)
	claims.UserID = ""
	tokenString := signToken(t, claims, testSecret)

	_, err := svc.ValidateAccessToken(tokenString)
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestJWTService_ValidateAccessToken_Garbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateAccessToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaims_UUIDAccessors(t *testing.T) {
	tenantID := uuid.New()
	userID := uuid.New()
	claims := &Claims{TenantID: tenantID.String(), UserID: userID.String()}

	gotTenant, err := claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, tenantID, gotTenant)

	gotUser, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, gotUser)

	claims.TenantID = "not-a-uuid"
	_, err = claims.GetTenantUUID()
	assert.Error(t, err)
}
