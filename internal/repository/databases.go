package repository

import (
	"context"

	"github.com/suteetoe/notabase/internal/model"
	"gorm.io/gorm"
)

type databaseRepository struct {
	db *gorm.DB
}

func (r *databaseRepository) Create(ctx context.Context, db *model.Database) error {
	return translateError(r.db.WithContext(ctx).Create(db).Error)
}

func (r *databaseRepository) Save(ctx context.Context, db *model.Database) error {
	return translateError(r.db.WithContext(ctx).Save(db).Error)
}

func (r *databaseRepository) FindByID(ctx context.Context, tenantID, id uint) (*model.Database, error) {
	var db model.Database
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_deleted = ?", id, tenantID, false).
		First(&db).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &db, nil
}

func (r *databaseRepository) ListByTenant(ctx context.Context, tenantID uint) ([]model.Database, error) {
	var dbs []model.Database
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_deleted = ?", tenantID, false).
		Order("id").
		Find(&dbs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return dbs, nil
}

// NameTaken reports whether a live database other than excludeID already uses
// the name within the tenant. Comparison is case-sensitive; soft-deleted
// databases release their name.
func (r *databaseRepository) NameTaken(ctx context.Context, tenantID uint, name string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Database{}).
		Where("tenant_id = ? AND name = ? AND is_deleted = ? AND id <> ?", tenantID, name, false, excludeID).
		Count(&count).Error
	if err != nil {
		return false, translateError(err)
	}
	return count > 0, nil
}
