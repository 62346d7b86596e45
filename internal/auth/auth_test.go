package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/errs"
)

func testJWT() *config.JWTConfig {
	return &config.JWTConfig{Secret: "test-secret", TTL: time.Hour}
}

func TestLoginAndParse(t *testing.T) {
	admin := &config.AdminConfig{Email: "admin@example.com", Password: "s3cret"}

	token, err := Login(testJWT(), admin, "admin@example.com", "s3cret")
	require.NoError(t, err)

	claims, err := ParseToken(testJWT(), token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)

	_, err = Login(testJWT(), admin, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestParseTokenRejects(t *testing.T) {
	token, err := GenerateToken(testJWT(), "admin@example.com")
	require.NoError(t, err)

	_, err = ParseToken(&config.JWTConfig{Secret: "other"}, token)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "admin@example.com",
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	raw, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseToken(testJWT(), raw)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)

	customer := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "x@example.com", Role: "customer"})
	raw, err = customer.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseToken(testJWT(), raw)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestHashRingStableAndBalanced(t *testing.T) {
	ring := NewHashRing([]string{"a", "b", "c"}, 100)
	require.Equal(t, 3, ring.Len())

	counts := map[string]int{}
	for i := 0; i < 3000; i++ {
		key := fmt.Sprintf("token-%d", i)
		node := ring.Node(key)
		assert.Equal(t, node, ring.Node(key))
		counts[node]++
	}
	for _, n := range []string{"a", "b", "c"} {
		assert.Greater(t, counts[n], 300, n)
	}
}

func TestHashRingIgnoresDuplicateAndEmptyNodes(t *testing.T) {
	ring := NewHashRing([]string{"a", "a", ""}, 50)
	assert.Equal(t, 1, ring.Len())
	ring.Add("b", "a")
	assert.Equal(t, 2, ring.Len())
	for i := 0; i < 200; i++ {
		assert.Contains(t, []string{"a", "b"}, ring.Node(fmt.Sprintf("k%d", i)))
	}
}

func TestDefaultRing(t *testing.T) {
	ring := NewHashRing(nil, 0)
	assert.Equal(t, "auth-node-default", ring.Node("anything"))
}

func TestTokenCacheWithoutRedis(t *testing.T) {
	var nilCache *TokenCache
	_, ok, err := nilCache.Get(context.Background(), "t")
	assert.NoError(t, err)
	assert.False(t, ok)

	c := NewTokenCache(nil, nil, 0)
	assert.NoError(t, c.Set(context.Background(), "t", &Claims{Email: "a"}))
	_, ok, err = c.Get(context.Background(), "t")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenCacheExpiryCapsAtTokenLifetime(t *testing.T) {
	c := NewTokenCache(nil, NewHashRing([]string{"n1"}, 10), 10*time.Minute)
	now := time.Now()

	short := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(2 * time.Minute))}}
	assert.InDelta(t, (2 * time.Minute).Seconds(), c.expiry(short, now).Seconds(), 1)

	long := &Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}}
	assert.Equal(t, 10*time.Minute, c.expiry(long, now))

	assert.Contains(t, c.cacheKey("tok"), "commerceops:auth:n1:")
}
