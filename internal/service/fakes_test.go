package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/query"
	"github.com/suteetoe/notabase/internal/shared"
)

// In-memory repository fakes. They mirror the persistence contract the GORM
// implementations provide: tenant scoping on every lookup, soft-delete rows
// excluded, shared error kinds on miss and conflict.

type fakeUserRepo struct {
	seq   uint
	users map[uint]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return shared.ErrorConflict
		}
	}
	r.seq++
	user.ID = r.seq
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrorNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, shared.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeTenantRepo struct {
	seq     uint
	tenants map[uint]*model.Tenant
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{tenants: map[uint]*model.Tenant{}}
}

func (r *fakeTenantRepo) Create(_ context.Context, tenant *model.Tenant) error {
	for _, t := range r.tenants {
		if t.Name == tenant.Name {
			return shared.ErrorConflict
		}
	}
	r.seq++
	tenant.ID = r.seq
	cp := *tenant
	r.tenants[tenant.ID] = &cp
	return nil
}

type fakeDatabaseRepo struct {
	seq       uint
	databases map[uint]*model.Database
}

func newFakeDatabaseRepo() *fakeDatabaseRepo {
	return &fakeDatabaseRepo{databases: map[uint]*model.Database{}}
}

func copyDatabase(db *model.Database) *model.Database {
	cp := *db
	cp.Fields = append(model.FieldList{}, db.Fields...)
	return &cp
}

func (r *fakeDatabaseRepo) Create(_ context.Context, db *model.Database) error {
	r.seq++
	db.ID = r.seq
	db.CreatedAt = time.Now()
	db.UpdatedAt = db.CreatedAt
	r.databases[db.ID] = copyDatabase(db)
	return nil
}

func (r *fakeDatabaseRepo) Save(_ context.Context, db *model.Database) error {
	if _, ok := r.databases[db.ID]; !ok {
		return shared.ErrorNotFound
	}
	r.databases[db.ID] = copyDatabase(db)
	return nil
}

func (r *fakeDatabaseRepo) FindByID(_ context.Context, tenantID, id uint) (*model.Database, error) {
	db, ok := r.databases[id]
	if !ok || db.TenantID != tenantID || db.IsDeleted {
		return nil, shared.ErrorNotFound
	}
	return copyDatabase(db), nil
}

func (r *fakeDatabaseRepo) ListByTenant(_ context.Context, tenantID uint) ([]model.Database, error) {
	var out []model.Database
	for _, db := range r.databases {
		if db.TenantID == tenantID && !db.IsDeleted {
			out = append(out, *copyDatabase(db))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeDatabaseRepo) NameTaken(_ context.Context, tenantID uint, name string, excludeID uint) (bool, error) {
	for _, db := range r.databases {
		if db.TenantID == tenantID && !db.IsDeleted && db.ID != excludeID && db.Name == name {
			return true, nil
		}
	}
	return false, nil
}

type fakeRecordRepo struct {
	seq     uint
	records map[uint]*model.Record

	// lastQuery captures the compiled pipeline of the most recent List call
	// so tests can assert on what would reach the database.
	lastQuery *query.RecordQuery
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[uint]*model.Record{}}
}

func copyRecord(rec *model.Record) *model.Record {
	cp := *rec
	values := model.NewValueMap()
	for _, pair := range rec.Values.Pairs() {
		values.Set(pair.Field, pair.Value)
	}
	cp.Values = values
	return &cp
}

func (r *fakeRecordRepo) Create(_ context.Context, rec *model.Record) error {
	r.seq++
	rec.ID = r.seq
	rec.CreatedAt = time.Now()
	rec.UpdatedAt = rec.CreatedAt
	r.records[rec.ID] = copyRecord(rec)
	return nil
}

func (r *fakeRecordRepo) Save(_ context.Context, rec *model.Record) error {
	if _, ok := r.records[rec.ID]; !ok {
		return shared.ErrorNotFound
	}
	r.records[rec.ID] = copyRecord(rec)
	return nil
}

func (r *fakeRecordRepo) FindByID(_ context.Context, tenantID, id uint) (*model.Record, error) {
	rec, ok := r.records[id]
	if !ok || rec.TenantID != tenantID || rec.IsDeleted {
		return nil, shared.ErrorNotFound
	}
	return copyRecord(rec), nil
}

// List applies the mandatory scope and the pagination window over id order.
// Search, filter and sort are compiled SQL fragments and only captured here;
// their translation is covered by the repository tests.
func (r *fakeRecordRepo) List(_ context.Context, q query.RecordQuery) ([]model.Record, error) {
	r.lastQuery = &q

	var scoped []model.Record
	for _, rec := range r.records {
		if rec.TenantID == q.TenantID && rec.DatabaseID == q.DatabaseID && !rec.IsDeleted {
			scoped = append(scoped, *copyRecord(rec))
		}
	}
	sort.Slice(scoped, func(i, j int) bool { return scoped[i].ID < scoped[j].ID })

	if q.Offset >= len(scoped) {
		return nil, nil
	}
	scoped = scoped[q.Offset:]
	if q.Limit < len(scoped) {
		scoped = scoped[:q.Limit]
	}
	return scoped, nil
}

type fakeActivityRepo struct {
	seq     uint
	entries []model.ActivityLog
	failing bool
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{}
}

func (r *fakeActivityRepo) Create(_ context.Context, entry *model.ActivityLog) error {
	if r.failing {
		return shared.ErrorConflict
	}
	r.seq++
	entry.ID = r.seq
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeActivityRepo) ListByTenant(_ context.Context, tenantID uint, offset, limit int) ([]model.ActivityLog, error) {
	var scoped []model.ActivityLog
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].TenantID == tenantID {
			scoped = append(scoped, r.entries[i])
		}
	}
	if offset >= len(scoped) {
		return nil, nil
	}
	scoped = scoped[offset:]
	if limit < len(scoped) {
		scoped = scoped[:limit]
	}
	return scoped, nil
}

// forTenant counts the audit entries recorded for a tenant, optionally
// narrowed to one action.
func (r *fakeActivityRepo) forTenant(tenantID uint, action string) []model.ActivityLog {
	var out []model.ActivityLog
	for _, e := range r.entries {
		if e.TenantID == tenantID && (action == "" || strings.EqualFold(e.Action, action)) {
			out = append(out, e)
		}
	}
	return out
}
