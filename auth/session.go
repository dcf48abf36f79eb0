// Package auth verifies Clerk session tokens.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/krishkalaria12/pixelmind/common"
)

// SessionCookie is the cookie Clerk stores the session token in.
const SessionCookie = "__session"

const leeway = 5 * time.Second

// Claims is the subset of a Clerk session token the service reads. Subject is
// the Clerk user id.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid,omitempty"`
}

// SessionVerifier returns the Clerk user id a session token belongs to.
type SessionVerifier interface {
	Verify(token string) (string, error)
}

type Service struct {
	key *rsa.PublicKey
}

// NewService parses the PEM encoded instance public key. Escaped newlines,
// as found in single-line environment values, are accepted.
func NewService(publicKeyPEM string) (*Service, error) {
	pem := strings.ReplaceAll(publicKeyPEM, `\n`, "\n")
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
	if err != nil {
		return nil, fmt.Errorf("%w: CLERK_JWT_KEY: %v", common.ErrConfiguration, err)
	}
	return &Service{key: key}, nil
}

func (s *Service) Verify(token string) (string, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnauthenticated, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", fmt.Errorf("%w: token has no subject", common.ErrUnauthenticated)
	}

	return claims.Subject, nil
}

// TokenFromRequest picks the bearer token, falling back to the session cookie.
func TokenFromRequest(authorization, cookie string) (string, error) {
	if token, ok := strings.CutPrefix(authorization, "Bearer "); ok && token != "" {
		return token, nil
	}
	if cookie != "" {
		return cookie, nil
	}
	return "", errors.New("no session token")
}
