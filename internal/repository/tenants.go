package repository

import (
	"context"

	"github.com/suteetoe/notabase/internal/model"
	"gorm.io/gorm"
)

type tenantRepository struct {
	db *gorm.DB
}

func (r *tenantRepository) Create(ctx context.Context, tenant *model.Tenant) error {
	return translateError(r.db.WithContext(ctx).Create(tenant).Error)
}
