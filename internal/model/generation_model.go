package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationRecord struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Identity         string         `gorm:"type:varchar(255);not null;index"`
	Prompt           string         `gorm:"type:text;not null"`
	ModelId          string         `gorm:"type:varchar(32);not null"`
	ImageGenerations bool           `gorm:"not null;default:false"`
	Thinking         bool           `gorm:"not null;default:false"`
	Attachments      datatypes.JSON `gorm:"type:jsonb"`
	IsFreshChat      bool           `gorm:"not null;default:false"`
	ChatId           string         `gorm:"type:varchar(255);index"`
	ProjectId        string         `gorm:"type:varchar(255);index"`
	State            string         `gorm:"type:varchar(32);not null;index"`
	LatestStatus     string         `gorm:"type:varchar(32)"`
	DemoUrl          string         `gorm:"type:text"`
	ErrorKind        string         `gorm:"type:varchar(32)"`
	ErrorMessage     string         `gorm:"type:text"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (GenerationRecord) TableName() string {
	return "generation_records"
}
