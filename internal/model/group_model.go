package model

import (
	"time"

	"github.com/google/uuid"
)

type Group struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `gorm:"type:varchar(255);not null"`
	CreatorId *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`

	Creator *User `gorm:"foreignKey:CreatorId;constraint:OnDelete:SET NULL"`
}

func (Group) TableName() string {
	return "groups"
}

type GroupMember struct {
	MemberId  uuid.UUID `gorm:"type:uuid;primaryKey"`
	GroupId   uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`

	Member *User  `gorm:"foreignKey:MemberId;constraint:OnDelete:CASCADE"`
	Group  *Group `gorm:"foreignKey:GroupId;constraint:OnDelete:CASCADE"`
}

func (GroupMember) TableName() string {
	return "group_members"
}
