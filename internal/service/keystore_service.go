package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// keyStoreService issues and resolves merchant API credentials. key_secret
// is hashed with bcrypt and never persisted in plaintext; key_id is a
// public, non-secret lookup value.
type keyStoreService struct {
	keyRepo      ports.ApiKeyRepository
	merchantRepo ports.MerchantRepository
	idSvc        ports.IdentifierService
	cache        MerchantKeyInvalidator
}

// MerchantKeyInvalidator lets the key store evict a revoked key from any
// hot key_id -> merchant cache without the service depending on the cache's
// concrete package.
type MerchantKeyInvalidator interface {
	Invalidate(keyID string)
}

// NewKeyStoreService creates a KeyStoreService. cache may be nil.
func NewKeyStoreService(keyRepo ports.ApiKeyRepository, merchantRepo ports.MerchantRepository, idSvc ports.IdentifierService, cache MerchantKeyInvalidator) ports.KeyStoreService {
	return &keyStoreService{keyRepo: keyRepo, merchantRepo: merchantRepo, idSvc: idSvc, cache: cache}
}

// IssueKey generates a key_id/key_secret pair, persists the key_secret's
// bcrypt hash, and returns the plaintext secret exactly once.
func (s *keyStoreService) IssueKey(ctx context.Context, merchantID uuid.UUID, label string) (string, string, *domain.ApiKey, error) {
	keyID := s.idSvc.NewRef("pf_key_")
	keySecret := "pf_sec_" + randomHex(24)

	hash, err := bcrypt.GenerateFromPassword([]byte(keySecret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", nil, err
	}

	key := &domain.ApiKey{
		KeyID:         keyID,
		KeySecretHash: string(hash),
		MerchantID:    merchantID,
		Label:         label,
		Active:        true,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.keyRepo.Create(ctx, key); err != nil {
		return "", "", nil, err
	}
	return keyID, keySecret, key, nil
}

// dummyKeySecretHash is a bcrypt hash of no real secret. ResolveKey compares
// against it whenever key_id is unknown or inactive, so an attacker probing
// key_ids always pays the same bcrypt cost a wrong-secret attempt would.
var dummyKeySecretHash = mustHash("payflow-dummy-key-secret-for-constant-time-compare")

func mustHash(s string) []byte {
	hash, err := bcrypt.GenerateFromPassword([]byte(s), bcrypt.DefaultCost)
	if err != nil {
		panic("keystore_service: failed to precompute dummy hash: " + err.Error())
	}
	return hash
}

// ResolveKey looks up key_id and verifies key_secret against the stored
// bcrypt hash in constant time (bcrypt's comparison is already
// constant-time). The bcrypt compare always runs, even when key_id is
// unknown or inactive, against a fixed dummy hash, so timing cannot
// distinguish unknown key, inactive key, and wrong secret; every failure
// mode also returns the same generic (nil, nil) result.
func (s *keyStoreService) ResolveKey(ctx context.Context, keyID, keySecret string) (*domain.Merchant, error) {
	key, err := s.keyRepo.GetByKeyID(ctx, keyID)
	if err != nil {
		return nil, err
	}

	hash := dummyKeySecretHash
	valid := key != nil && key.Active
	if valid {
		hash = []byte(key.KeySecretHash)
	}
	compareErr := bcrypt.CompareHashAndPassword(hash, []byte(keySecret))
	if !valid || compareErr != nil {
		return nil, nil
	}

	merchant, err := s.merchantRepo.GetByID(ctx, key.MerchantID)
	if err != nil {
		return nil, err
	}
	_ = s.keyRepo.TouchLastUsed(ctx, keyID, time.Now().UTC())
	return merchant, nil
}

// RevokeKey flips active=false and invalidates any cached resolution.
func (s *keyStoreService) RevokeKey(ctx context.Context, keyID string) error {
	if err := s.keyRepo.Revoke(ctx, keyID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(keyID)
	}
	return nil
}

func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic("keystore_service: system entropy source failed: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
