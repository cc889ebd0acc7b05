package appointment

import (
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ===============================
// Domain Actions
// ===============================

func Cancel(ap *models.Appointment) {
	ap.Status = string(StatusCancelled)
}

// MoveTo places the appointment on a slot's coordinates and marks it
// rescheduled.
func MoveTo(ap *models.Appointment, slot *models.Slot) {
	ap.AppointmentDate = slot.Date
	ap.StartTime = slot.StartTime
	ap.EndTime = slot.EndTime
	ap.Status = string(StatusRescheduled)
}

// NewFromSlot builds a scheduled appointment occupying slot.
func NewFromSlot(slot *models.Slot, email, note string) *models.Appointment {
	return &models.Appointment{
		UserEmail:       email,
		DoctorID:        slot.DoctorID,
		AppointmentDate: slot.Date,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		Note:            note,
		Status:          string(InitialStatus()),
	}
}

// IsActive reports whether ap still occupies its slot.
func IsActive(ap *models.Appointment) bool {
	return Status(ap.Status).IsActive()
}

// ApplyRefs copies calendar identifiers onto the appointment.
func ApplyRefs(ap *models.Appointment, refs *CalendarRefs) {
	if refs == nil {
		return
	}
	if refs.EventID != "" {
		id := refs.EventID
		ap.GoogleEventID = &id
	}
	if refs.Link != "" {
		link := refs.Link
		ap.GoogleEventLink = &link
	}
	if refs.MeetLink != "" {
		meet := refs.MeetLink
		ap.GoogleMeetLink = &meet
	}
}
