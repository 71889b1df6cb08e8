package usecase

import (
	"context"

	"github.com/brameldering/bram-pos/internal/domain/model"
	repo "github.com/brameldering/bram-pos/internal/repository"
)

// 管理者操作ログの閲覧
type AuditLogUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditLogUsecase(auditRepo repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{auditRepo: auditRepo}
}

func (u *AuditLogUsecase) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	if filter.Limit < 0 || filter.Limit > 200 {
		return nil, ValidationError("invalid limit")
	}
	if filter.Offset < 0 {
		return nil, ValidationError("invalid offset")
	}

	logs, err := u.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, InternalError("db error")
	}
	return logs, nil
}
