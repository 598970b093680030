package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "kidslearning"

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and verifies student bearer tokens
type TokenIssuer struct {
	secret   []byte
	duration time.Duration
}

// NewTokenIssuer creates an HS256 issuer. A zero duration means tokens never expire.
func NewTokenIssuer(secret string, duration time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), duration: duration}
}

// Issue creates a token whose subject is the student id
func (ti *TokenIssuer) Issue(studentID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  studentID,
		Issuer:   tokenIssuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if ti.duration != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ti.duration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and returns the student id it was issued for
func (ti *TokenIssuer) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
