// Package auth implements the admin gate.
//
// The gate is a placeholder: tokens are base64("<user>:<unix millis>") and
// any token whose decoded text contains the marker is accepted. It keeps
// casual callers out of the admin routes and nothing more.
package auth

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/modhub/internal/domain"
)

// TokenMarker must appear in a decoded token for it to be accepted.
const TokenMarker = "admin"

// Gate issues and checks admin tokens
type Gate struct {
	username string
	password string
	now      func() time.Time
}

// NewGate creates a gate accepting exactly one credential pair
func NewGate(username, password string) *Gate {
	return &Gate{
		username: username,
		password: password,
		now:      time.Now,
	}
}

// Login returns a token for the configured credentials
func (g *Gate) Login(username, password string) (string, error) {
	if username != g.username || password != g.password {
		return "", domain.ErrInvalidCredentials
	}
	raw := fmt.Sprintf("%s:%d", username, g.now().UnixMilli())
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Verify checks token and returns the admin user it names
func (g *Gate) Verify(token string) (string, error) {
	if token == "" {
		return "", domain.ErrMissingToken
	}

	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	text := string(decoded)
	if !strings.Contains(text, TokenMarker) {
		return "", domain.ErrInvalidToken
	}

	user, _, _ := strings.Cut(text, ":")
	return user, nil
}
