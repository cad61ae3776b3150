package model

import (
	"time"

	"gorm.io/datatypes"
)

// Tenant represents one workspace, the root of the isolation model.
// Every database, record and activity entry carries a tenant reference.
type Tenant struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	Name      string            `json:"name" gorm:"type:varchar(100);uniqueIndex"`
	Plan      string            `json:"plan" gorm:"type:varchar(50);default:'free'"`
	Settings  datatypes.JSONMap `json:"settings" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
