package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"payflow/internal/core/ports"
)

// hmacSigningService signs webhook bodies with HMAC-SHA256 and verifies
// signatures in constant time.
type hmacSigningService struct{}

// NewSigningService creates a SigningService.
func NewSigningService() ports.SigningService {
	return &hmacSigningService{}
}

// Sign returns the lowercase hex HMAC-SHA256 of body using secret.
func (s *hmacSigningService) Sign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature is the HMAC-SHA256 of body under secret,
// using a constant-time comparison.
func (s *hmacSigningService) Verify(secret, body, signature string) bool {
	expected := s.Sign(secret, body)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}
