package service

import (
	"context"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"

	"github.com/google/uuid"
)

type webhookService struct {
	webhookRepo ports.WebhookEventRepository
}

// NewWebhookService creates a WebhookService.
func NewWebhookService(webhookRepo ports.WebhookEventRepository) ports.WebhookService {
	return &webhookService{webhookRepo: webhookRepo}
}

func (s *webhookService) ListLogs(ctx context.Context, merchantID uuid.UUID, limit, offset int) ([]*domain.WebhookEvent, error) {
	events, err := s.webhookRepo.ListByMerchant(ctx, merchantID, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return events, nil
}
