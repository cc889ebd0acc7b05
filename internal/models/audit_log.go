package models

import "time"

type AuditLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Source string `gorm:"size:20" json:"source"`
	Action string `gorm:"size:50;not null;index" json:"action"`

	Entity   string  `gorm:"size:50;index" json:"entity"`
	EntityID *string `gorm:"size:64" json:"entityId"`
	Metadata string  `gorm:"type:text" json:"metadata"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
