package bithumb

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

func TestQueryHashDeterministic(t *testing.T) {
	params := url.Values{}
	params.Set("market", "KRW-BTC")
	params.Set("count", "30")

	first := queryHash(params)
	second := queryHash(params)
	require.Equal(t, first, second)
	require.Len(t, first, 128)
	require.Equal(t, strings.ToLower(first), first)

	// Insertion order must not matter: the canonical encoding is sorted.
	reordered := url.Values{}
	reordered.Set("count", "30")
	reordered.Set("market", "KRW-BTC")
	require.Equal(t, first, queryHash(reordered))

	// Different parameters hash differently.
	params.Set("count", "31")
	require.NotEqual(t, first, queryHash(params))
}

func TestBearerTokenClaims(t *testing.T) {
	creds := Credentials{AccessKey: "access", SecretKey: "secret"}
	now := time.UnixMilli(1700000000000)

	params := url.Values{}
	params.Set("market", "KRW-BTC")

	token, err := creds.bearerToken(params, now)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token, "Bearer "))

	claims := parseClaims(t, strings.TrimPrefix(token, "Bearer "), "secret")
	require.Equal(t, "access", claims["access_key"])
	require.NotEmpty(t, claims["nonce"])
	require.EqualValues(t, 1700000000000, claims["timestamp"])
	require.Equal(t, queryHash(params), claims["query_hash"])
	require.Equal(t, "SHA512", claims["query_hash_alg"])
}

func TestBearerTokenOmitsHashWithoutParams(t *testing.T) {
	creds := Credentials{AccessKey: "access", SecretKey: "secret"}

	token, err := creds.bearerToken(nil, time.Now())
	require.NoError(t, err)

	claims := parseClaims(t, strings.TrimPrefix(token, "Bearer "), "secret")
	require.NotContains(t, claims, "query_hash")
	require.NotContains(t, claims, "query_hash_alg")
}

func TestBearerTokenFreshNoncePerRequest(t *testing.T) {
	creds := Credentials{AccessKey: "access", SecretKey: "secret"}
	now := time.Now()

	first, err := creds.bearerToken(nil, now)
	require.NoError(t, err)
	second, err := creds.bearerToken(nil, now)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestCredentialsValidate(t *testing.T) {
	require.Error(t, Credentials{}.validate())
	require.Error(t, Credentials{AccessKey: "a"}.validate())
	require.NoError(t, Credentials{AccessKey: "a", SecretKey: "s"}.validate())
}

func parseClaims(t *testing.T, token, secret string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		require.Equal(t, jwt.SigningMethodHS256, tok.Method)
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims
}
