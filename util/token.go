package util

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Token type discriminator carried in the "type" claim. Verifying a token
// against the wrong type always fails, so a refresh token can never be used
// as an access token.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers a bad signature, an expired token, and a type
// claim mismatch alike.
var ErrInvalidToken = errors.New("invalid token")

var (
	jwtSecret     = os.Getenv("JWTSECRET")
	jwtSecretByte = []byte(jwtSecret)
	jwtMutex      sync.RWMutex
)

// SetJWTSecret updates the signing secret at runtime. Tests use this to pin
// a deterministic secret.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecret = secret
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current signing secret.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}

// IssueAccessToken signs an access token carrying the subject and display
// name.
func IssueAccessToken(kakaoID, nickname string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      kakaoID,
		"nickname": nickname,
		"type":     TokenTypeAccess,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(GetJWTSecretByte())
}

// IssueRefreshToken signs a refresh token carrying only the subject.
func IssueRefreshToken(kakaoID string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  kakaoID,
		"type": TokenTypeRefresh,
		"exp":  time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(GetJWTSecretByte())
}

// VerifyToken validates signature, expiry and the type claim, returning the
// token's claims.
func VerifyToken(tokenString, expectedType string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return GetJWTSecretByte(), nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims["type"] != expectedType {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, expectedType)
	}
	return claims, nil
}

// SubjectFromClaims extracts the non-empty "sub" claim.
func SubjectFromClaims(claims jwt.MapClaims) (string, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return sub, nil
}
