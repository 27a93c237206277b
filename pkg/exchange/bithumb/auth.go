package bithumb

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Credentials holds the API key pair used to sign requests. The secret
// key is only ever fed into the HMAC; it must not appear in logs.
type Credentials struct {
	AccessKey string
	SecretKey string
}

func (c Credentials) validate() error {
	if c.AccessKey == "" || c.SecretKey == "" {
		return errors.New("bithumb: access and secret key are required")
	}
	return nil
}

// queryHash returns the lowercase hex SHA-512 digest of the canonical
// query string. The same encoding is used for GET query parameters and
// POST body fields, so the hash is deterministic for a parameter set.
func queryHash(params url.Values) string {
	digest := sha512.Sum512([]byte(params.Encode()))
	return hex.EncodeToString(digest[:])
}

// bearerToken builds the signed authorization token for one request. The
// query-hash claims are only present when the request actually carries
// parameters; a bare GET signs just the key, nonce and timestamp.
func (c Credentials) bearerToken(params url.Values, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"access_key": c.AccessKey,
		"nonce":      uuid.NewString(),
		"timestamp":  now.UnixMilli(),
	}
	if len(params) > 0 {
		claims["query_hash"] = queryHash(params)
		claims["query_hash_alg"] = "SHA512"
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(c.SecretKey))
	if err != nil {
		return "", err
	}
	return "Bearer " + signed, nil
}
