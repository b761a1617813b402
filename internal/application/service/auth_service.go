package service

import (
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/pharmaware/counterpos-api/pkg/apperror"
	"github.com/pharmaware/counterpos-api/pkg/utils"
)

// AuthService authenticates the counter cashier with a PIN and issues
// session tokens. One register, one cashier.
type AuthService struct {
	jwtManager *utils.JWTManager
	cashier    string
	pinHash    []byte
}

// NewAuthService creates an auth service. The configured PIN is hashed once
// at startup so the plain value is not kept around.
func NewAuthService(jwtManager *utils.JWTManager, cashier, pin string) *AuthService {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash cashier PIN: %v", err)
	}
	return &AuthService{
		jwtManager: jwtManager,
		cashier:    cashier,
		pinHash:    hash,
	}
}

// LoginResult carries the issued token and the cashier it belongs to.
type LoginResult struct {
	Token   string `json:"token"`
	Cashier string `json:"cashier"`
}

// Login verifies the PIN and returns a session token.
func (s *AuthService) Login(pin string) (*LoginResult, error) {
	if err := bcrypt.CompareHashAndPassword(s.pinHash, []byte(pin)); err != nil {
		return nil, apperror.NewAppError(401, "Invalid PIN")
	}

	token, err := s.jwtManager.GenerateToken(s.cashier)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Cashier: s.cashier}, nil
}
