package token

import (
	"testing"
	"time"

	"github.com/syrjfsih/TwoNCafe/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_Issue(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	iss := NewJWTIssuer("secret", time.Hour)

	raw, exp, err := iss.Issue(7, model.RoleAdmin, 3, now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) { return []byte("secret"), nil })
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, "7", claims["sub"])
	assert.Equal(t, "ADMIN", claims["role"])
	assert.Equal(t, float64(3), claims["tv"])
}
