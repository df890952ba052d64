package fakeapi

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"plantblog/pkg/blog"

	"github.com/dgrijalva/jwt-go"
)

var ErrBadToken = errors.New("invalid token")

type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
}

func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{Secret: secret, TTL: ttl}
}

func (ti *TokenIssuer) Issue(u *blog.User, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": map[string]any{"username": u.Username, "id": u.ID},
		"sub":  strconv.Itoa(u.ID),
		"iat":  now.Unix(),
		"exp":  now.Add(ti.TTL).Unix(),
	})
	return token.SignedString(ti.Secret)
}

// Parse verifies the signature and expiry and returns the user id.
func (ti *TokenIssuer) Parse(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.Secret, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrBadToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrBadToken
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.Atoi(sub)
	if err != nil {
		return 0, ErrBadToken
	}
	return id, nil
}
