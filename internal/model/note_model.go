package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Note is the persisted row for annotations and their replies. Ranges and
// Tags are stored as JSON (jsonb on postgres) and only decoded at the API
// boundary.
type Note struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserId         string         `gorm:"type:varchar(255);not null;index"`
	CourseId       string         `gorm:"type:varchar(255);not null;index"`
	UsageId        string         `gorm:"type:varchar(255);not null"`
	ParentId       *uuid.UUID     `gorm:"type:uuid;index"`
	Quote          string         `gorm:"type:text;not null;default:''"`
	Text           string         `gorm:"type:text;not null;default:''"`
	Ranges         datatypes.JSON `gorm:"not null"`
	Tags           datatypes.JSON `gorm:"not null;default:'[]'"`
	PermissionType string         `gorm:"type:varchar(100);not null;default:'personal'"`
	Created        time.Time      `gorm:"column:created;not null"`
	Updated        time.Time      `gorm:"column:updated;not null;index"`
}

func (Note) TableName() string {
	return "notes"
}
