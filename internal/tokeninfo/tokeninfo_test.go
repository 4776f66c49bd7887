package tokeninfo

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	return token
}

func TestExpiresAtReadsExpClaim(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second).UTC()
	token := signed(t, jwt.MapClaims{"sub": "alice", "exp": exp.Unix()})

	assert.Equal(t, exp, ExpiresAt(token))
}

func TestExpiresAtIgnoresExpiredTokens(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second).UTC()
	token := signed(t, jwt.MapClaims{"exp": exp.Unix()})

	assert.Equal(t, exp, ExpiresAt(token))
}

func TestExpiresAtOpaqueCredential(t *testing.T) {
	assert.True(t, ExpiresAt("tok123").IsZero())
	assert.True(t, ExpiresAt("a.b.c").IsZero())
}

func TestExpiresAtWithoutExp(t *testing.T) {
	token := signed(t, jwt.MapClaims{"sub": "bob"})
	assert.True(t, ExpiresAt(token).IsZero())
}
