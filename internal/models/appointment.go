package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Appointment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserEmail string `gorm:"size:254;not null;index" json:"userEmail"`
	DoctorID  string `gorm:"size:64;not null;index:idx_appointments_doctor_date_start" json:"doctorId"`

	AppointmentDate string `gorm:"size:10;not null;index:idx_appointments_doctor_date_start" json:"appointmentDate"`
	StartTime       string `gorm:"size:5;not null;index:idx_appointments_doctor_date_start" json:"startTime"`
	EndTime         string `gorm:"size:5;not null" json:"endTime"`

	Note   string `gorm:"size:500" json:"note"`
	Status string `gorm:"size:20;not null;index" json:"status"`

	GoogleEventID   *string `gorm:"size:255" json:"googleEventId"`
	GoogleEventLink *string `gorm:"size:512" json:"googleEventLink"`
	GoogleMeetLink  *string `gorm:"size:512" json:"googleMeetLink"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// EventID returns the calendar event id or "" when none was stored.
func (a *Appointment) EventID() string {
	if a.GoogleEventID == nil {
		return ""
	}
	return *a.GoogleEventID
}

// TimeLabel renders "HH:MM - HH:MM".
func (a *Appointment) TimeLabel() string {
	return a.StartTime + " - " + a.EndTime
}
