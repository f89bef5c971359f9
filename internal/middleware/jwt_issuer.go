package middleware

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// HS256のアクセストークンを発行する（AuthJWTと対）
type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is empty")
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL}, nil
}

func (i *JWTIssuer) Issue(email string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub": email,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}
