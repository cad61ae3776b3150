package service

import (
	"context"
	"fmt"
	"time"

	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/query"
	"github.com/suteetoe/notabase/internal/repository"
	"github.com/suteetoe/notabase/internal/shared"
)

// ListRecordsInput is the caller-facing query surface of the record store.
type ListRecordsInput struct {
	Search    string                 `json:"search"`
	Filter    map[string]interface{} `json:"filter"`
	SortField string                 `json:"sort_field"`
	SortOrder string                 `json:"sort_order"`
	Page      int                    `json:"page"`
	Limit     int                    `json:"limit"`
}

// RecordView is one record formatted for transport: the value mapping is
// flattened into ordered {field, value} pairs. Pair order follows the
// record's stored key order, not the schema's field order.
type RecordView struct {
	ID        uint               `json:"id"`
	Values    []model.FieldValue `json:"values"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// RecordService owns record reads and writes. Writes require the editor
// role; any authenticated tenant member may read and query.
type RecordService struct {
	records   repository.RecordRepository
	databases repository.DatabaseRepository
	activity  *ActivityService
}

// NewRecordService wires the record service.
func NewRecordService(records repository.RecordRepository, databases repository.DatabaseRepository, activity *ActivityService) *RecordService {
	return &RecordService{records: records, databases: databases, activity: activity}
}

// CreateRecord stores a new record. Input keys that are not defined on the
// database's schema are dropped silently; defined keys are copied verbatim
// with no type validation against the field's declared type.
func (s *RecordService) CreateRecord(ctx context.Context, p *Principal, databaseID uint, values model.ValueMap) (*model.Record, error) {
	if err := authorize(p, model.RoleEditor); err != nil {
		return nil, err
	}

	db, err := s.databases.FindByID(ctx, p.TenantID, databaseID)
	if err != nil {
		return nil, err
	}

	defined := make(map[string]struct{}, len(db.Fields))
	for _, f := range db.Fields {
		defined[f.Name] = struct{}{}
	}

	kept := model.NewValueMap()
	for _, key := range values.Keys() {
		if _, ok := defined[key]; !ok {
			continue
		}
		v, _ := values.Get(key)
		kept.Set(key, v)
	}

	rec := &model.Record{
		TenantID:   p.TenantID,
		DatabaseID: db.ID,
		Values:     kept,
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating record: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionCreateRecord, map[string]interface{}{
		"database_id": db.ID,
		"record_id":   rec.ID,
	})
	return rec, nil
}

// UpdateRecord merges the given keys into the record's value mapping:
// existing keys are overwritten, new keys added, nothing is removed. Unlike
// create, update accepts keys outside the database's schema.
func (s *RecordService) UpdateRecord(ctx context.Context, p *Principal, id uint, values model.ValueMap) (*model.Record, error) {
	if err := authorize(p, model.RoleEditor); err != nil {
		return nil, err
	}

	rec, err := s.records.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}

	for _, key := range values.Keys() {
		v, _ := values.Get(key)
		rec.Values.Set(key, v)
	}
	rec.UpdatedAt = time.Now()
	if err := s.records.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("updating record: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionUpdateRecord, map[string]interface{}{
		"database_id": rec.DatabaseID,
		"record_id":   rec.ID,
	})
	return rec, nil
}

// DeleteRecord sets the soft-delete flag and refreshes the modification
// timestamp.
func (s *RecordService) DeleteRecord(ctx context.Context, p *Principal, id uint) error {
	if err := authorize(p, model.RoleEditor); err != nil {
		return err
	}

	rec, err := s.records.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return err
	}

	rec.IsDeleted = true
	rec.UpdatedAt = time.Now()
	if err := s.records.Save(ctx, rec); err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionDeleteRecord, map[string]interface{}{
		"database_id": rec.DatabaseID,
		"record_id":   rec.ID,
	})
	return nil
}

// GetRecord returns one live record of the caller's tenant.
func (s *RecordService) GetRecord(ctx context.Context, p *Principal, id uint) (*model.Record, error) {
	if err := authorize(p, model.RoleViewer); err != nil {
		return nil, err
	}
	return s.records.FindByID(ctx, p.TenantID, id)
}

// ListRecords composes tenant scope, keyword search, caller filters, sort
// and pagination into one query and formats the results. The stages always
// run in that order; the tenant/database scope can never be omitted.
func (s *RecordService) ListRecords(ctx context.Context, p *Principal, databaseID uint, in ListRecordsInput) ([]RecordView, error) {
	if err := authorize(p, model.RoleViewer); err != nil {
		return nil, err
	}

	db, err := s.databases.FindByID(ctx, p.TenantID, databaseID)
	if err != nil {
		return nil, err
	}

	conds, err := query.CompileFilter(in.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrorInvalidInput, err)
	}

	offset, limit := query.Paginate(in.Page, in.Limit, query.DefaultRecordLimit)

	q := query.RecordQuery{
		TenantID:   p.TenantID,
		DatabaseID: db.ID,
		Search:     query.CompileSearch(in.Search, db.Fields.TextFieldNames()),
		Conditions: conds,
		Sort:       query.ParseSort(in.SortField, in.SortOrder),
		Offset:     offset,
		Limit:      limit,
	}

	recs, err := s.records.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}

	views := make([]RecordView, 0, len(recs))
	for _, rec := range recs {
		views = append(views, RecordView{
			ID:        rec.ID,
			Values:    rec.Values.Pairs(),
			CreatedAt: rec.CreatedAt,
			UpdatedAt: rec.UpdatedAt,
		})
	}
	return views, nil
}
