package model

import (
	"time"

	"gorm.io/datatypes"
)

// Audit action tags, one per mutating operation.
const (
	ActionCreateDatabase = "CREATE_DATABASE"
	ActionUpdateDatabase = "UPDATE_DATABASE"
	ActionDeleteDatabase = "DELETE_DATABASE"
	ActionCreateField    = "CREATE_FIELD"
	ActionUpdateField    = "UPDATE_FIELD"
	ActionDeleteField    = "DELETE_FIELD"
	ActionCreateRecord   = "CREATE_RECORD"
	ActionUpdateRecord   = "UPDATE_RECORD"
	ActionDeleteRecord   = "DELETE_RECORD"
)

// ActivityLog is one append-only audit entry. Entries are never updated or
// deleted by the application.
type ActivityLog struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	TenantID  uint              `json:"tenant_id" gorm:"index;not null"`
	UserID    uint              `json:"user_id" gorm:"index"`
	Action    string            `json:"action" gorm:"type:varchar(50);not null"`
	Details   datatypes.JSONMap `json:"details" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at"`
}
