package control

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Operator tokens gate the mutating control endpoints. When no secret
// is configured the surface is open, which is fine for a loopback
// listener.
const (
	operatorTTL = 12 * time.Hour
	tokenIssuer = "bomberbot-control"
)

type operatorClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}

// NewOperatorToken signs a token for the named operator.
func NewOperatorToken(secret, operator string) (string, error) {
	now := time.Now()
	claims := operatorClaims{
		Operator: operator,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   operator,
			ExpiresAt: jwt.NewNumericDate(now.Add(operatorTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func verifyOperatorToken(secret, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &operatorClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("token parsing failed: %w", err)
	}
	if claims, ok := token.Claims.(*operatorClaims); ok && token.Valid {
		return claims.Operator, nil
	}
	return "", fmt.Errorf("invalid token")
}

// requireOperator wraps mutating handlers. With an empty secret it
// passes everything through.
func (s *Server) requireOperator(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.secret == "" {
			next(w, r)
			return
		}
		raw := r.Header.Get("Authorization")
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := verifyOperatorToken(s.secret, raw); err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}
