package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims is what a verified token asserts about the caller.
type Claims struct {
	UserID string
	Email  string
	Role   string
}

// Tokens issues and verifies HS256 session tokens. The signing secret
// is injected at construction; nothing here reads the environment.
type Tokens struct {
	secret []byte
	ttl    time.Duration
}

func NewTokens(secret string) *Tokens {
	return &Tokens{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
	}
}

func (t *Tokens) Issue(user *User) (string, error) {
	if user == nil || user.ID == "" {
		return "", errors.New("cannot issue token without a user id")
	}

	claims := jwt.MapClaims{
		"userID": user.ID,
		"email":  user.Email,
		"role":   user.Role,
		"exp":    time.Now().Add(t.ttl).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *Tokens) Verify(tokenString string) (Claims, error) {
	parsed, err := jwt.Parse(tokenString, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, ErrInvalidToken
	}

	userID, _ := mapClaims["userID"].(string)
	email, _ := mapClaims["email"].(string)
	role, _ := mapClaims["role"].(string)
	if userID == "" {
		return Claims{}, ErrInvalidToken
	}

	return Claims{UserID: userID, Email: email, Role: role}, nil
}
