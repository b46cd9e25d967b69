package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func TestNewService(t *testing.T) {
	secretKey := "test-secret-key"
	service := NewService(secretKey)

	assert.NotNil(t, service)
	assert.Equal(t, []byte(secretKey), service.secretKey)
	assert.Equal(t, DefaultTTL, service.ttl)
}

func TestGenerateAndValidateToken_RoundTrip(t *testing.T) {
	service := NewService("test-secret-key")

	token, err := service.GenerateToken("user-456", "moderator")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "moderator", claims.Role)
}

func TestGenerateToken_ExpiryIsFourHoursAfterIssuance(t *testing.T) {
	clock := newClock()
	service := NewService("test-secret-key", WithClock(clock.Now))

	token, err := service.GenerateToken("user-123", "user")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.WithinDuration(t, clock.now.Add(4*time.Hour), claims.ExpiresAt.Time, 0)
	assert.WithinDuration(t, clock.now, claims.IssuedAt.Time, 0)
}

func TestGenerateToken_Deterministic(t *testing.T) {
	clock := newClock()
	service := NewService("test-secret-key", WithClock(clock.Now))

	first, err := service.GenerateToken("user-123", "user")
	require.NoError(t, err)
	second, err := service.GenerateToken("user-123", "user")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestValidateToken_ExpiryBoundary(t *testing.T) {
	clock := newClock()
	service := NewService("test-secret-key", WithClock(clock.Now))

	token, err := service.GenerateToken("user-123", "user")
	require.NoError(t, err)

	clock.Advance(4*time.Hour - time.Second)
	_, err = service.ValidateToken(token)
	assert.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_CustomTTL(t *testing.T) {
	clock := newClock()
	service := NewService("test-secret-key", WithClock(clock.Now), WithTTL(time.Minute))

	token, err := service.GenerateToken("user-123", "user")
	require.NoError(t, err)

	clock.Advance(time.Minute + time.Second)
	_, err = service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	service := NewService("test-secret-key")

	_, err := service.ValidateToken("invalid-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateToken_EmptyToken(t *testing.T) {
	service := NewService("test-secret-key")

	_, err := service.ValidateToken("")
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service1 := NewService("secret-key-1")
	service2 := NewService("secret-key-2")

	token, err := service1.GenerateToken("user-123", "admin")
	require.NoError(t, err)

	_, err = service2.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateToken_TamperedPayload(t *testing.T) {
	service := NewService("test-secret-key")

	token, err := service.GenerateToken("user-123", "user")
	require.NoError(t, err)

	forged, err := service.GenerateToken("user-123", "admin")
	require.NoError(t, err)

	// Header and payload from the forged token, signature from the original.
	tampered := forged[:strings.LastIndex(forged, ".")] + token[strings.LastIndex(token, "."):]
	_, err = service.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateToken_UnexpectedSigningMethod(t *testing.T) {
	service := NewService("test-secret-key")

	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, Claims{
		UserID: "user-123",
		Role:   "admin",
		RegisteredClaims: gojwt.RegisteredClaims{
			ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestValidateToken_MissingExpiry(t *testing.T) {
	service := NewService("test-secret-key")

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, Claims{UserID: "user-123", Role: "user"})
	signed, err := token.SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
