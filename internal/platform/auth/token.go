package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Elevated roles get access to the administrative endpoints.
const (
	RoleStudent   = "student"
	RoleFaculty   = "faculty"
	RoleLibrarian = "librarian"
	RoleAdmin     = "admin"
)

func IsElevated(role string) bool {
	return role == RoleLibrarian || role == RoleAdmin
}

// TokenIssuer signs access tokens. The secret is injected at construction,
// never read from a package global.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func NewTokenIssuer(secret []byte, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, expiry: expiry}
}

func (t *TokenIssuer) Issue(userID, role string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  now.Add(t.expiry).Unix(),
	})
	return token.SignedString(t.secret)
}

// IssueResetToken signs a short-lived password-reset token. The user's
// current password hash is mixed into the key so the token stops verifying
// as soon as the password changes.
func (t *TokenIssuer) IssueResetToken(userID, passwordHash string, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": now.Add(time.Hour).Unix(),
	})
	return token.SignedString(append(append([]byte{}, t.secret...), passwordHash...))
}

func (t *TokenIssuer) VerifyResetToken(tokenStr, passwordHash string) (string, error) {
	key := append(append([]byte{}, t.secret...), passwordHash...)
	token, err := jwt.Parse(tokenStr, func(tok *jwt.Token) (any, error) {
		if tok.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid reset token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("missing sub")
	}
	return sub, nil
}
