package auth

import (
	"errors"
	"fmt"
	"strings"

	"sagetracker/backend/pkg/jwt"
)

// ErrAuthenticationFailure means the credential was missing, invalid or expired.
var ErrAuthenticationFailure = errors.New("authentication failure")

// TokenParser validates a token and returns the user id it was issued for.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// Gate verifies bearer credentials for HTTP requests and socket handshakes.
type Gate struct {
	parser TokenParser
}

// NewGate creates a Gate backed by parser.
func NewGate(parser TokenParser) *Gate {
	return &Gate{parser: parser}
}

var _ TokenParser = (*jwt.Issuer)(nil)

// VerifyConnectionCredential yields the user identity carried by token.
func (g *Gate) VerifyConnectionCredential(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("%w: missing token", ErrAuthenticationFailure)
	}
	userID, err := g.parser.ParseToken(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthenticationFailure, err)
	}
	return userID, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
