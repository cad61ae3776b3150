// Package repository owns persistence of all tenant-scoped entities. Every
// read and write is filtered by tenant id at this layer; services never see
// rows belonging to another tenant.
package repository

import (
	"context"
	"errors"

	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/query"
	"github.com/suteetoe/notabase/internal/shared"
	"gorm.io/gorm"
)

// UserRepository persists users.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id uint) (*model.User, error)
}

// TenantRepository persists tenants.
type TenantRepository interface {
	Create(ctx context.Context, tenant *model.Tenant) error
}

// DatabaseRepository persists user-defined databases and their schemas.
type DatabaseRepository interface {
	Create(ctx context.Context, db *model.Database) error
	Save(ctx context.Context, db *model.Database) error
	FindByID(ctx context.Context, tenantID, id uint) (*model.Database, error)
	ListByTenant(ctx context.Context, tenantID uint) ([]model.Database, error)
	NameTaken(ctx context.Context, tenantID uint, name string, excludeID uint) (bool, error)
}

// RecordRepository persists records and executes compiled record queries.
type RecordRepository interface {
	Create(ctx context.Context, rec *model.Record) error
	Save(ctx context.Context, rec *model.Record) error
	FindByID(ctx context.Context, tenantID, id uint) (*model.Record, error)
	List(ctx context.Context, q query.RecordQuery) ([]model.Record, error)
}

// ActivityRepository persists append-only audit entries.
type ActivityRepository interface {
	Create(ctx context.Context, entry *model.ActivityLog) error
	ListByTenant(ctx context.Context, tenantID uint, offset, limit int) ([]model.ActivityLog, error)
}

// Repositories bundles the GORM-backed implementations over one connection.
type Repositories struct {
	Users     UserRepository
	Tenants   TenantRepository
	Databases DatabaseRepository
	Records   RecordRepository
	Activity  ActivityRepository
}

// New wires all repositories over the given database handle.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:     &userRepository{db: db},
		Tenants:   &tenantRepository{db: db},
		Databases: &databaseRepository{db: db},
		Records:   &recordRepository{db: db},
		Activity:  &activityRepository{db: db},
	}
}

// translateError maps GORM errors onto the shared kinds.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrorNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrorConflict
	default:
		return err
	}
}
