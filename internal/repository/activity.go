package repository

import (
	"context"

	"github.com/suteetoe/notabase/internal/model"
	"gorm.io/gorm"
)

type activityRepository struct {
	db *gorm.DB
}

func (r *activityRepository) Create(ctx context.Context, entry *model.ActivityLog) error {
	return translateError(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *activityRepository) ListByTenant(ctx context.Context, tenantID uint, offset, limit int) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, translateError(err)
	}
	return entries, nil
}
