// Package orderjwt mints and verifies the order tokens the pizza factory hands
// back with a placed order.
package orderjwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const issuer = "pizzamock"

// Signer issues HS256 tokens over arbitrary claims.
type Signer struct {
	secretKey     []byte
	tokenDuration time.Duration
	now           func() time.Time
}

func New(secretKey string, tokenDuration time.Duration) *Signer {
	return &Signer{
		secretKey:     []byte(secretKey),
		tokenDuration: tokenDuration,
		now:           time.Now,
	}
}

// Sign returns a token carrying claims plus iat, exp and iss.
func (s *Signer) Sign(claims map[string]any) (string, error) {
	now := s.now()
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iss"] = issuer
	mc["iat"] = jwt.NewNumericDate(now)
	if s.tokenDuration > 0 {
		mc["exp"] = jwt.NewNumericDate(now.Add(s.tokenDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign order token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry and returns the claims.
func (s *Signer) Verify(tokenString string) (map[string]any, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return map[string]any(claims), nil
}
