package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FieldType enumerates the supported field types of a user-defined schema.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeBoolean     FieldType = "boolean"
	FieldTypeSelect      FieldType = "select"
	FieldTypeMultiSelect FieldType = "multi_select"
	FieldTypeRelation    FieldType = "relation"
)

// ValidFieldType reports whether t is one of the supported field types.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean,
		FieldTypeSelect, FieldTypeMultiSelect, FieldTypeRelation:
		return true
	}
	return false
}

// FieldDefinition is one named, typed column of a user-defined database.
// Options is only meaningful for select types, RelationTo for relations.
type FieldDefinition struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	Options    []string  `json:"options,omitempty"`
	RelationTo uint      `json:"relation_to,omitempty"`
}

// FieldList is the ordered field schema of a database, persisted as jsonb.
type FieldList []FieldDefinition

// ByID returns the index of the field with the given id, or -1.
func (l FieldList) ByID(id string) int {
	for i, f := range l {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// HasName reports whether a field other than excludeID already uses the name.
// Comparison is case-insensitive.
func (l FieldList) HasName(name, excludeID string) bool {
	for _, f := range l {
		if f.ID != excludeID && strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Names returns the field names in schema order.
func (l FieldList) Names() []string {
	names := make([]string, 0, len(l))
	for _, f := range l {
		names = append(names, f.Name)
	}
	return names
}

// TextFieldNames returns the names of all text fields, the search surface
// of the query engine.
func (l FieldList) TextFieldNames() []string {
	var names []string
	for _, f := range l {
		if f.Type == FieldTypeText {
			names = append(names, f.Name)
		}
	}
	return names
}

// Value implements driver.Valuer so the schema persists as jsonb.
func (l FieldList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the jsonb column back.
func (l *FieldList) Scan(src interface{}) error {
	if src == nil {
		*l = FieldList{}
		return nil
	}
	var data []byte
	switch s := src.(type) {
	case []byte:
		data = s
	case string:
		data = []byte(s)
	default:
		return fmt.Errorf("unsupported source type %T for field list", src)
	}
	return json.Unmarshal(data, l)
}

// Database is a tenant-scoped named collection with a user-defined schema.
// Deletion is a soft flag only; records of a deleted database are kept.
type Database struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TenantID  uint      `json:"tenant_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Fields    FieldList `json:"fields" gorm:"type:jsonb"`
	IsDeleted bool      `json:"is_deleted" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
