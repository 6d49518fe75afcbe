package service

import (
	"context"

	"payflow/internal/core/domain"
	"payflow/internal/core/ports"
	"payflow/pkg/apperror"
)

type adminService struct {
	adminRepo   ports.AdminRepository
	paymentRepo ports.PaymentRepository
}

// NewAdminService creates an AdminService.
func NewAdminService(adminRepo ports.AdminRepository, paymentRepo ports.PaymentRepository) ports.AdminService {
	return &adminService{adminRepo: adminRepo, paymentRepo: paymentRepo}
}

func (s *adminService) Stats(ctx context.Context) (*ports.AdminStats, error) {
	stats, err := s.adminRepo.Stats(ctx)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return stats, nil
}

func (s *adminService) Flagged(ctx context.Context, limit, offset int) ([]*domain.Payment, error) {
	payments, err := s.paymentRepo.ListFlagged(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return payments, nil
}
