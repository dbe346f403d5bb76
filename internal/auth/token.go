package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the SSO token claims minted by the main platform backend when a
// user launches the whiteboard for a project. This service only reads UserID;
// the room to join always comes from the join event itself.
type Claims struct {
	UserID    string `json:"userId"`
	ProjectID string `json:"projectId,omitempty"`
	ToolName  string `json:"toolName,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks SSO tokens against the shared signing secret. It holds no
// mutable state and is safe for concurrent use.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Verify validates the token signature and registered claims and returns the
// decoded claims. Expired tokens fail with jwt.ErrTokenExpired in the chain;
// use Expired to tell them apart from malformed or forged ones.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// Expired reports whether a Verify error was caused by token expiry rather
// than a bad signature or malformed token.
func Expired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return "", errors.New("invalid authorization header format")
	}
	return authHeader[7:], nil
}
