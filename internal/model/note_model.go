package model

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title     string     `gorm:"type:text;not null"`
	Content   string     `gorm:"type:text;not null"`
	CreatorId *uuid.UUID `gorm:"type:uuid;index"`
	GroupId   *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`

	Creator *User  `gorm:"foreignKey:CreatorId;constraint:OnDelete:SET NULL"`
	Group   *Group `gorm:"foreignKey:GroupId;constraint:OnDelete:CASCADE"`
}

func (Note) TableName() string {
	return "notes"
}
