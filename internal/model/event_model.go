package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Event struct {
	Id          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID         `gorm:"type:uuid;not null;index"`
	Summary     string            `gorm:"type:varchar(255);not null"`
	Description string            `gorm:"type:text"`
	Location    string            `gorm:"type:varchar(255)"`
	StartAt     time.Time         `gorm:"column:start_at;not null;index"`
	EndAt       time.Time         `gorm:"column:end_at;not null"`
	Metadata    datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt   time.Time         `gorm:"autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt    `gorm:"index"`
}

func (Event) TableName() string {
	return "events"
}
