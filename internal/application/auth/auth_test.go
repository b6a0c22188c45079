package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/aescanero/modhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	g := NewGate("admin", "admin123")
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }

	token, err := g.Login("admin", "admin123")
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(token)
	require.NoError(t, err)
	assert.Equal(t, "admin:1700000000000", string(decoded))

	_, err = g.Login("admin", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = g.Login("root", "admin123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestVerify(t *testing.T) {
	g := NewGate("admin", "admin123")

	token, err := g.Login("admin", "admin123")
	require.NoError(t, err)

	user, err := g.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", user)

	// Anything carrying the marker passes
	user, err = g.Verify(base64.StdEncoding.EncodeToString([]byte("superadmin:1")))
	require.NoError(t, err)
	assert.Equal(t, "superadmin", user)

	_, err = g.Verify("")
	assert.ErrorIs(t, err, domain.ErrMissingToken)

	_, err = g.Verify("%%%not-base64")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = g.Verify(base64.StdEncoding.EncodeToString([]byte("guest:1")))
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestConfiguredUserRoundTrip(t *testing.T) {
	g := NewGate("siteadmin", "s3cret")

	token, err := g.Login("siteadmin", "s3cret")
	require.NoError(t, err)

	user, err := g.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "siteadmin", user)
}
