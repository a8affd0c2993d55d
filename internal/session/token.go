package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// errNoExpiry is returned when a token decodes but carries no exp claim.
	errNoExpiry = errors.New("token has no exp claim")
	errNoSub    = errors.New("token has no sub claim")
)

// segmentParser decodes base64url segments with or without padding.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Claims is the subset of the token payload the client reads.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// payload decodes the middle segment of token. The header and signature
// are not inspected; verification is the backend's job.
func payload(token string) (jwt.MapClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, jwt.ErrTokenMalformed
	}
	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %w", jwt.ErrTokenMalformed, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(raw, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %w", jwt.ErrTokenMalformed, err)
	}
	return claims, nil
}

// Decode reads the expiry from the payload segment of token, and the
// subject when it is a string. Only a missing or unreadable exp is an error.
func Decode(token string) (Claims, error) {
	claims, err := payload(token)
	if err != nil {
		return Claims{}, fmt.Errorf("session.Decode: %w", err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("session.Decode: %w", err)
	}
	if exp == nil {
		return Claims{}, fmt.Errorf("session.Decode: %w", errNoExpiry)
	}

	sub, _ := claims.GetSubject() //nolint:errcheck // a non-string sub does not affect expiry
	return Claims{Subject: sub, ExpiresAt: exp.Time}, nil
}

// Subject returns the sub claim of token. The backend issues sub=email, so
// this is the identity for tokens that arrive without one (OAuth callback).
func Subject(token string) (string, error) {
	claims, err := payload(token)
	if err != nil {
		return "", fmt.Errorf("session.Subject: %w", err)
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("session.Subject: %w", err)
	}
	if sub == "" {
		return "", fmt.Errorf("session.Subject: %w", errNoSub)
	}
	return sub, nil
}
