package service

import (
	"crypto/rand"
	"encoding/hex"

	"payflow/internal/core/ports"
)

// idService generates opaque public references by concatenating a fixed
// prefix with CSPRNG output, hex-encoded.
type idService struct{}

// NewIdentifierService creates an IdentifierService.
func NewIdentifierService() ports.IdentifierService {
	return &idService{}
}

// NewRef returns prefix + 20 bytes of CSPRNG output, hex-encoded (40 hex
// chars), e.g. "pf_order_3f9c2a...".
func (s *idService) NewRef(prefix string) string {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		panic("id_service: system entropy source failed: " + err.Error())
	}
	return prefix + hex.EncodeToString(buf)
}
