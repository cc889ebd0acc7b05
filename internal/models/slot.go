package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Slot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	DoctorID  string `gorm:"size:64;not null;uniqueIndex:idx_slots_doctor_date_start" json:"doctorId"`
	Date      string `gorm:"size:10;not null;uniqueIndex:idx_slots_doctor_date_start" json:"date"`
	StartTime string `gorm:"size:5;not null;uniqueIndex:idx_slots_doctor_date_start" json:"startTime"`
	EndTime   string `gorm:"size:5;not null" json:"endTime"`

	IsBooked      bool         `gorm:"not null;default:false;index" json:"isBooked"`
	AppointmentID *uuid.UUID   `gorm:"type:uuid;index" json:"appointmentId"`
	Appointment   *Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

func (s *Slot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Slot) TimeLabel() string {
	return s.StartTime + " - " + s.EndTime
}
