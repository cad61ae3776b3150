package repository

import (
	"context"

	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/query"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type recordRepository struct {
	db *gorm.DB
}

func (r *recordRepository) Create(ctx context.Context, rec *model.Record) error {
	return translateError(r.db.WithContext(ctx).Create(rec).Error)
}

func (r *recordRepository) Save(ctx context.Context, rec *model.Record) error {
	return translateError(r.db.WithContext(ctx).Save(rec).Error)
}

func (r *recordRepository) FindByID(ctx context.Context, tenantID, id uint) (*model.Record, error) {
	var rec model.Record
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ? AND is_deleted = ?", id, tenantID, false).
		First(&rec).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &rec, nil
}

// List executes a compiled record query as one pipeline. The tenant/database
// scope always comes first and can never be dropped; search, filters, sort
// and the pagination window follow in that fixed order.
func (r *recordRepository) List(ctx context.Context, q query.RecordQuery) ([]model.Record, error) {
	tx := r.db.WithContext(ctx).Model(&model.Record{}).
		Where("database_id = ? AND tenant_id = ? AND is_deleted = ?", q.DatabaseID, q.TenantID, false)

	if q.Search != nil {
		tx = tx.Where(q.Search.Clause, q.Search.Args...)
	}

	for _, cond := range q.Conditions {
		tx = tx.Where(cond.Clause, cond.Args...)
	}

	if q.Sort != nil {
		dir := "ASC"
		if q.Sort.Desc {
			dir = "DESC"
		}
		// The direction comes from a two-value whitelist and the field name
		// travels as a bind parameter, so nothing caller-controlled reaches
		// the SQL text.
		tx = tx.Clauses(clause.OrderBy{
			Expression: gorm.Expr("values ->> ? "+dir, q.Sort.Field),
		})
	}

	var recs []model.Record
	err := tx.Offset(q.Offset).Limit(q.Limit).Find(&recs).Error
	if err != nil {
		return nil, translateError(err)
	}
	return recs, nil
}
