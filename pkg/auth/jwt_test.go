package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWT_RoundTrip(t *testing.T) {
	gen, err := NewJWTGenerator("s3cret", "versegraph", []string{"versegraph-api"}, time.Hour)
	require.NoError(t, err)
	token, err := gen.GenerateToken("user-1", "a@b.c", []string{"reader"})
	require.NoError(t, err)

	v, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     "s3cret",
		Issuer:        "versegraph",
		Audience:      []string{"versegraph-api"},
	})
	require.NoError(t, err)

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"reader"}, claims.Roles)
}

func TestJWT_Rejections(t *testing.T) {
	good, err := NewJWTGenerator("s3cret", "versegraph", nil, time.Hour)
	require.NoError(t, err)
	expired, err := NewJWTGenerator("s3cret", "versegraph", nil, -time.Hour)
	require.NoError(t, err)
	other, err := NewJWTGenerator("other", "versegraph", nil, time.Hour)
	require.NoError(t, err)
	foreign, err := NewJWTGenerator("s3cret", "someone-else", nil, time.Hour)
	require.NoError(t, err)

	sign := func(g *JWTGenerator) string {
		tok, err := g.GenerateToken("user-1", "", nil)
		require.NoError(t, err)
		return tok
	}

	v, err := NewJWTValidator(JWTConfig{SecretKey: "s3cret", Issuer: "versegraph"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "missing", token: "  ", wantErr: ErrMissingToken},
		{name: "expired", token: sign(expired), wantErr: ErrExpiredToken},
		{name: "wrong secret", token: sign(other), wantErr: ErrInvalidSignature},
		{name: "wrong issuer", token: sign(foreign), wantErr: ErrInvalidClaims},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = v.ValidateToken(sign(good))
	assert.NoError(t, err)
}

func TestNewJWTValidator_Config(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{SigningMethod: "HS256"})
	assert.Error(t, err)
	_, err = NewJWTValidator(JWTConfig{SigningMethod: "RS256"})
	assert.Error(t, err)
	_, err = NewJWTValidator(JWTConfig{SigningMethod: "ES512", SecretKey: "x"})
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u", user.UserID)
}
