package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWTer(secret string, ttl time.Duration) *JWTer {
	return &JWTer{Secret: []byte(secret), Issuer: "realty-api", TTL: ttl}
}

func TestIssueParse(t *testing.T) {
	j := newJWTer("0123456789abcdef0123456789abcdef", time.Hour)
	tok, err := j.Issue("sess-1")
	require.NoError(t, err)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", c.SID)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	tok, err := newJWTer("another-secret-another-secret-xx", time.Hour).Issue("sess-1")
	require.NoError(t, err)

	_, err = newJWTer("0123456789abcdef0123456789abcdef", time.Hour).Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	j := newJWTer("0123456789abcdef0123456789abcdef", -2*time.Minute)
	tok, err := j.Issue("sess-1")
	require.NoError(t, err)
	_, err = j.Parse(tok)
	assert.Error(t, err)
}
