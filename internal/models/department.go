package models

import (
	"time"

	"gorm.io/gorm"
)

type Department struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	HeadID    *uint64        `json:"head_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Head *User `gorm:"foreignKey:HeadID" json:"head,omitempty"`
}
