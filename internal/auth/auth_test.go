package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewService(t *testing.T) {
	service := NewService("", 0)
	assert.NotNil(t, service)
	assert.Equal(t, []byte(DefaultSecret), service.jwtSecret)
	assert.Equal(t, 24*time.Hour, service.Expiry())

	service = NewService("s3cret", time.Hour)
	assert.Equal(t, []byte("s3cret"), service.jwtSecret)
	assert.Equal(t, time.Hour, service.Expiry())
}

func TestService_GenerateToken(t *testing.T) {
	service := NewService("s3cret", time.Hour)

	token, err := service.GenerateToken("session-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = service.GenerateToken("")
	assert.Error(t, err)
}

func TestService_ValidateToken(t *testing.T) {
	service := NewService("s3cret", time.Hour)

	token, _ := service.GenerateToken("session-1")

	// Test valid token
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	require.NotNil(t, claims)
	assert.Equal(t, "session-1", claims.SessionID)

	// Test invalid token
	_, err = service.ValidateToken("invalid-token")
	assert.Equal(t, ErrInvalidToken, err)

	// Test token with Bearer prefix
	_, err = service.ValidateToken("Bearer " + token)
	assert.NoError(t, err)

	// Test token signed with another secret
	_, err = NewService("other", time.Hour).ValidateToken(token)
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_ValidateToken_Expired(t *testing.T) {
	service := NewService("s3cret", time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": "session-1",
		"exp":        time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := token.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.Equal(t, ErrExpiredToken, err)
}

func TestService_ValidateToken_Claims(t *testing.T) {
	service := NewService("s3cret", time.Hour)
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		method jwt.SigningMethod
		key    interface{}
		claims jwt.MapClaims
	}{
		{"missing session", jwt.SigningMethodHS256, []byte("s3cret"), jwt.MapClaims{"exp": exp}},
		{"empty session", jwt.SigningMethodHS256, []byte("s3cret"), jwt.MapClaims{"session_id": "", "exp": exp}},
		{"missing exp", jwt.SigningMethodHS256, []byte("s3cret"), jwt.MapClaims{"session_id": "s"}},
		{"unsigned", jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"session_id": "s", "exp": exp}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := jwt.NewWithClaims(tt.method, tt.claims).SignedString(tt.key)
			require.NoError(t, err)

			_, err = service.ValidateToken(signed)
			assert.Equal(t, ErrInvalidToken, err)
		})
	}
}

func TestService_ExtractTokenFromHeader(t *testing.T) {
	service := NewService("", 0)

	// Test valid header
	token := "valid-token"
	header := "Bearer " + token
	extracted, err := service.ExtractTokenFromHeader(header)
	assert.NoError(t, err)
	assert.Equal(t, token, extracted)

	// Test empty header
	_, err = service.ExtractTokenFromHeader("")
	assert.Equal(t, ErrInvalidToken, err)

	// Test invalid format
	_, err = service.ExtractTokenFromHeader("InvalidFormat")
	assert.Equal(t, ErrInvalidToken, err)

	// Test missing token
	_, err = service.ExtractTokenFromHeader("Bearer ")
	assert.Equal(t, ErrInvalidToken, err)
}

func TestService_TokenExpiration(t *testing.T) {
	service := NewService("s3cret", 2*time.Hour)

	token, _ := service.GenerateToken("session-1")

	// Token should be valid immediately
	claims, err := service.ValidateToken(token)
	require.NoError(t, err)

	// Check expiration time
	now := time.Now().Unix()
	assert.Greater(t, claims.Exp, now)
	assert.LessOrEqual(t, claims.Exp, now+int64(service.tokenExp.Seconds())+1)
}
