package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"

	"github.com/google/uuid"
)

type merchantService struct {
	merchantRepo ports.MerchantRepository
	keyStore     ports.KeyStoreService
}

// NewMerchantService creates a MerchantService.
func NewMerchantService(merchantRepo ports.MerchantRepository, keyStore ports.KeyStoreService) ports.MerchantService {
	return &merchantService{merchantRepo: merchantRepo, keyStore: keyStore}
}

// CreateMerchant creates the merchant profile owned by userID. A user may
// own at most one merchant row; a second attempt conflicts.
func (s *merchantService) CreateMerchant(ctx context.Context, userID uuid.UUID, businessName, businessEmail string, website *string) (*domain.Merchant, error) {
	if businessName == "" || businessEmail == "" {
		return nil, apperror.Validation("business_name and business_email are required")
	}

	existing, err := s.merchantRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if existing != nil {
		return nil, apperror.Conflict("this user already owns a merchant profile")
	}

	secret, err := randomHexSecret(32)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	merchant := &domain.Merchant{
		ID:            uuid.New(),
		UserID:        userID,
		BusinessName:  businessName,
		BusinessEmail: businessEmail,
		Website:       website,
		WebhookSecret: secret,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.merchantRepo.Create(ctx, merchant); err != nil {
		return nil, apperror.Internal(err)
	}
	return merchant, nil
}

func (s *merchantService) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Merchant, error) {
	m, err := s.merchantRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if m == nil {
		return nil, apperror.NotFound("merchant")
	}
	return m, nil
}

// GetByID looks up a merchant by its internal id, used by the public hosted
// checkout to display the merchant's business name without requiring auth.
func (s *merchantService) GetByID(ctx context.Context, merchantID uuid.UUID) (*domain.Merchant, error) {
	m, err := s.merchantRepo.GetByID(ctx, merchantID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if m == nil {
		return nil, apperror.NotFound("merchant")
	}
	return m, nil
}

func (s *merchantService) UpdateWebhookURL(ctx context.Context, merchantID uuid.UUID, url *string) error {
	if err := s.merchantRepo.UpdateWebhookURL(ctx, merchantID, url); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (s *merchantService) IssueKey(ctx context.Context, merchantID uuid.UUID, label string) (string, string, error) {
	keyID, keySecret, _, err := s.keyStore.IssueKey(ctx, merchantID, label)
	if err != nil {
		return "", "", apperror.Internal(err)
	}
	return keyID, keySecret, nil
}

func (s *merchantService) RevokeKey(ctx context.Context, merchantID uuid.UUID, keyID string) error {
	if err := s.keyStore.RevokeKey(ctx, keyID); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// randomHexSecret returns n random bytes, hex-encoded, used for the
// merchant's webhook_secret.
func randomHexSecret(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
