// Package token issues and parses the bearer tokens that carry a session id.
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fastygo/marketplace/domain"
)

var ErrInvalid = errors.New("invalid token")

// Claims binds a token to one session.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	issuer string
}

func NewIssuer(secret, issuer string) *Issuer {
	return &Issuer{secret: []byte(secret), issuer: issuer}
}

// Issue signs a token that expires with the session.
func (i *Issuer) Issue(session *domain.Session) (string, error) {
	if session == nil || session.ID == "" {
		return "", domain.ErrInvalidPayload
	}
	claims := Claims{
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and returns the session id it carries. Expiry
// is left to the session record, which is authoritative.
func (i *Issuer) Parse(raw string) (string, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	var claims Claims
	tok, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalid
	}
	if i.issuer != "" && claims.Issuer != i.issuer {
		return "", ErrInvalid
	}
	if claims.SessionID == "" {
		return "", ErrInvalid
	}
	return claims.SessionID, nil
}
