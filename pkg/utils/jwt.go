package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CounterClaims represents the claims in a counter session token.
type CounterClaims struct {
	Cashier string `json:"cashier"`
	jwt.RegisteredClaims
}

// JWTManager handles counter token generation and validation.
type JWTManager struct {
	secretKey []byte
	expiry    time.Duration
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(secret string, expiry time.Duration) *JWTManager {
	return &JWTManager{secretKey: []byte(secret), expiry: expiry}
}

// GenerateToken generates a session token for the given cashier.
func (m *JWTManager) GenerateToken(cashier string) (string, error) {
	claims := &CounterClaims{
		Cashier: cashier,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "counterpos-api",
			Subject:   cashier,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ValidateToken validates a session token and returns its claims.
func (m *JWTManager) ValidateToken(tokenString string) (*CounterClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CounterClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CounterClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
