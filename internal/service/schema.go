package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/suteetoe/notabase/internal/model"
	"github.com/suteetoe/notabase/internal/repository"
	"github.com/suteetoe/notabase/internal/shared"
)

// FieldSpec carries the caller-supplied attributes of a field definition.
type FieldSpec struct {
	Name       string          `json:"name"`
	Type       model.FieldType `json:"type"`
	Options    []string        `json:"options,omitempty"`
	RelationTo uint            `json:"relation_to,omitempty"`
}

// SchemaService owns databases and their field definitions. All mutations
// require the admin role within the owning tenant.
type SchemaService struct {
	databases repository.DatabaseRepository
	activity  *ActivityService
}

// NewSchemaService wires the schema service.
func NewSchemaService(databases repository.DatabaseRepository, activity *ActivityService) *SchemaService {
	return &SchemaService{databases: databases, activity: activity}
}

// CreateDatabase creates a named database with an empty schema. Names are
// unique within the tenant, compared case-sensitively.
func (s *SchemaService) CreateDatabase(ctx context.Context, p *Principal, name string) (*model.Database, error) {
	if err := authorize(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: database name is required", shared.ErrorInvalidInput)
	}

	taken, err := s.databases.NameTaken(ctx, p.TenantID, name, 0)
	if err != nil {
		return nil, fmt.Errorf("checking database name: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: database %q", shared.ErrorConflict, name)
	}

	db := &model.Database{
		TenantID: p.TenantID,
		Name:     name,
		Fields:   model.FieldList{},
	}
	if err := s.databases.Create(ctx, db); err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionCreateDatabase, map[string]interface{}{
		"database_id": db.ID,
		"name":        db.Name,
	})
	return db, nil
}

// UpdateDatabase renames a database.
func (s *SchemaService) UpdateDatabase(ctx context.Context, p *Principal, id uint, name string) (*model.Database, error) {
	if err := authorize(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: database name is required", shared.ErrorInvalidInput)
	}

	db, err := s.databases.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.databases.NameTaken(ctx, p.TenantID, name, db.ID)
	if err != nil {
		return nil, fmt.Errorf("checking database name: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: database %q", shared.ErrorConflict, name)
	}

	db.Name = name
	if err := s.databases.Save(ctx, db); err != nil {
		return nil, fmt.Errorf("updating database: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionUpdateDatabase, map[string]interface{}{
		"database_id": db.ID,
		"name":        db.Name,
	})
	return db, nil
}

// DeleteDatabase sets the soft-delete flag. Records of the database are kept
// on purpose; only the database disappears from listings and lookups.
func (s *SchemaService) DeleteDatabase(ctx context.Context, p *Principal, id uint) error {
	if err := authorize(p, model.RoleAdmin); err != nil {
		return err
	}

	db, err := s.databases.FindByID(ctx, p.TenantID, id)
	if err != nil {
		return err
	}

	db.IsDeleted = true
	if err := s.databases.Save(ctx, db); err != nil {
		return fmt.Errorf("deleting database: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionDeleteDatabase, map[string]interface{}{
		"database_id": db.ID,
		"name":        db.Name,
	})
	return nil
}

// GetDatabase returns one live database of the caller's tenant.
func (s *SchemaService) GetDatabase(ctx context.Context, p *Principal, id uint) (*model.Database, error) {
	if err := authorize(p, model.RoleViewer); err != nil {
		return nil, err
	}
	return s.databases.FindByID(ctx, p.TenantID, id)
}

// ListDatabases returns the tenant's live databases.
func (s *SchemaService) ListDatabases(ctx context.Context, p *Principal) ([]model.Database, error) {
	if err := authorize(p, model.RoleViewer); err != nil {
		return nil, err
	}
	return s.databases.ListByTenant(ctx, p.TenantID)
}

// AddField appends a field to the database's schema. Field names are unique
// within a database, compared case-insensitively.
func (s *SchemaService) AddField(ctx context.Context, p *Principal, databaseID uint, spec FieldSpec) (*model.Database, error) {
	if err := authorize(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateFieldSpec(spec); err != nil {
		return nil, err
	}

	db, err := s.databases.FindByID(ctx, p.TenantID, databaseID)
	if err != nil {
		return nil, err
	}

	if db.Fields.HasName(spec.Name, "") {
		return nil, fmt.Errorf("%w: field %q", shared.ErrorConflict, spec.Name)
	}

	field := model.FieldDefinition{
		ID:         uuid.NewString(),
		Name:       spec.Name,
		Type:       spec.Type,
		Options:    spec.Options,
		RelationTo: spec.RelationTo,
	}
	db.Fields = append(db.Fields, field)
	if err := s.databases.Save(ctx, db); err != nil {
		return nil, fmt.Errorf("adding field: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionCreateField, map[string]interface{}{
		"database_id": db.ID,
		"name":        db.Name,
		"field":       field.Name,
	})
	return db, nil
}

// UpdateField replaces a field's attributes in place, keeping its id and
// position. The field's type may change freely; values already stored under
// the old type are left as they are.
func (s *SchemaService) UpdateField(ctx context.Context, p *Principal, databaseID uint, fieldID string, spec FieldSpec) (*model.Database, error) {
	if err := authorize(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateFieldSpec(spec); err != nil {
		return nil, err
	}

	db, err := s.databases.FindByID(ctx, p.TenantID, databaseID)
	if err != nil {
		return nil, err
	}

	idx := db.Fields.ByID(fieldID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: field", shared.ErrorNotFound)
	}
	if db.Fields.HasName(spec.Name, fieldID) {
		return nil, fmt.Errorf("%w: field %q", shared.ErrorConflict, spec.Name)
	}

	db.Fields[idx] = model.FieldDefinition{
		ID:         fieldID,
		Name:       spec.Name,
		Type:       spec.Type,
		Options:    spec.Options,
		RelationTo: spec.RelationTo,
	}
	if err := s.databases.Save(ctx, db); err != nil {
		return nil, fmt.Errorf("updating field: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionUpdateField, map[string]interface{}{
		"database_id": db.ID,
		"name":        db.Name,
		"field":       spec.Name,
	})
	return db, nil
}

// RemoveField removes a field from the schema. Values already stored under
// the field's name are not cleaned up.
func (s *SchemaService) RemoveField(ctx context.Context, p *Principal, databaseID uint, fieldID string) (*model.Database, error) {
	if err := authorize(p, model.RoleAdmin); err != nil {
		return nil, err
	}

	db, err := s.databases.FindByID(ctx, p.TenantID, databaseID)
	if err != nil {
		return nil, err
	}

	idx := db.Fields.ByID(fieldID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: field", shared.ErrorNotFound)
	}

	removed := db.Fields[idx]
	db.Fields = append(db.Fields[:idx], db.Fields[idx+1:]...)
	if err := s.databases.Save(ctx, db); err != nil {
		return nil, fmt.Errorf("removing field: %w", err)
	}

	s.activity.Append(ctx, p.TenantID, p.UserID, model.ActionDeleteField, map[string]interface{}{
		"database_id": db.ID,
		"name":        db.Name,
		"field":       removed.Name,
	})
	return db, nil
}

func validateFieldSpec(spec FieldSpec) error {
	if strings.TrimSpace(spec.Name) == "" {
		return fmt.Errorf("%w: field name is required", shared.ErrorInvalidInput)
	}
	if !model.ValidFieldType(spec.Type) {
		return fmt.Errorf("%w: unknown field type %q", shared.ErrorInvalidInput, spec.Type)
	}
	return nil
}
