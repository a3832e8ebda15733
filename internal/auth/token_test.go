package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Additional-Code/orderdesk/internal/config"
)

func newTestIssuer(secret string) *Issuer {
	var cfg config.Config
	cfg.Auth = config.Auth{JWTSecret: secret, TokenTTL: time.Hour, Issuer: "orderdesk"}
	return NewIssuer(cfg)
}

func TestIssueAndParse(t *testing.T) {
	issuer := newTestIssuer("s3cret")

	token, expires, err := issuer.Issue(Principal{UserID: 42, Role: "admin"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	p, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: 42, Role: "admin"}, p)
}

func TestParseRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := newTestIssuer("s3cret")
	token, _, err := issuer.Issue(Principal{UserID: 7, Role: "user"})
	require.NoError(t, err)

	_, err = newTestIssuer("other").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
