package model

import (
	"time"
)

// Record is one row of schema-flexible key/value data within a database.
// Values are not validated against the owning schema; see the record service
// for the create-time whitelist and update-time merge semantics.
type Record struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	TenantID   uint      `json:"tenant_id" gorm:"index;not null"`
	DatabaseID uint      `json:"database_id" gorm:"index;not null"`
	Values     ValueMap  `json:"values" gorm:"type:jsonb"`
	IsDeleted  bool      `json:"is_deleted" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
