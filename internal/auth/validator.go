package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const tokenLifetime = 7 * 24 * time.Hour

// JWTValidator issues and verifies HMAC-signed access tokens.
type JWTValidator struct {
	hmacKey []byte
	issuer  string
}

func NewJWTValidator(hmacKey string) *JWTValidator {
	return &JWTValidator{
		hmacKey: []byte(hmacKey),
		issuer:  "coach-backend",
	}
}

// Issue mints a signed token for the user.
func (v *JWTValidator) Issue(userID, email, name, avatarURL string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		UserID:    userID,
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.hmacKey)
}

// Validate parses and verifies a token, accepting either a bare token or a
// full Authorization header value.
func (v *JWTValidator) Validate(tokenString string) (*Claims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return v.hmacKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
