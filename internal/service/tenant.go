package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/walterfan/reminder-service/internal/model"
	"github.com/walterfan/reminder-service/internal/repository"
)

type TenantService struct {
	log  *zap.Logger
	repo repository.TenantRepository
}

func NewTenantService(repo repository.TenantRepository, log *zap.Logger) *TenantService {
	return &TenantService{
		log:  log,
		repo: repo,
	}
}

func (s *TenantService) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	return s.repo.List(ctx)
}

func (s *TenantService) GetTenant(ctx context.Context, id uuid.UUID) (model.Tenant, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TenantService) CreateTenant(ctx context.Context, tenant model.Tenant) (model.Tenant, error) {
	return s.repo.Insert(ctx, tenant)
}

func (s *TenantService) DeleteTenant(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
