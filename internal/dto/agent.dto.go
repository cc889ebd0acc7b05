package dto

import (
	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ======================================================
// REQUESTS
// ======================================================

type CheckAvailabilityRequest struct {
	Date string `json:"date" binding:"required,isodate"`
}

type CheckAvailabilityRangeRequest struct {
	StartDate string `json:"startDate" binding:"required,isodate"`
	EndDate   string `json:"endDate" binding:"required,isodate"`
}

type NextDaysRequest struct {
	Days int `json:"days" binding:"omitempty,min=0"`
}

type NextAvailableRequest struct {
	FromDate string `json:"fromDate" binding:"omitempty,isodate"`
	Limit    int    `json:"limit" binding:"omitempty,min=0"`
}

type BookAppointmentRequest struct {
	Email string `json:"email" binding:"required"`
	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
	Note  string `json:"note"`
}

type GetAppointmentsRequest struct {
	Email string `json:"email" binding:"required"`
}

type CancelAppointmentRequest struct {
	Email string `json:"email" binding:"required"`
	Date  string `json:"date" binding:"required"`
}

type RescheduleAppointmentRequest struct {
	Email       string `json:"email" binding:"required"`
	CurrentDate string `json:"currentDate" binding:"required"`
	NewDate     string `json:"newDate" binding:"required"`
	NewTime     string `json:"newTime" binding:"required"`
}

// ======================================================
// RESPONSES
// ======================================================

type AvailabilityResponse struct {
	Success        bool              `json:"success"`
	Date           string            `json:"date"`
	AvailableSlots []domain.TimeSlot `json:"availableSlots"`
	Count          int               `json:"count"`
	Message        string            `json:"message"`
}

type RangeAvailabilityResponse struct {
	Success      bool                     `json:"success"`
	StartDate    string                   `json:"startDate"`
	EndDate      string                   `json:"endDate"`
	Availability []domain.DayAvailability `json:"availability"`
	TotalSlots   int                      `json:"totalSlots"`
	Message      string                   `json:"message"`
}

type NextAvailableResponse struct {
	Success  bool               `json:"success"`
	FromDate string             `json:"fromDate"`
	Slots    []domain.DatedSlot `json:"slots"`
	Count    int                `json:"count"`
	Message  string             `json:"message"`
}

type BookedAppointment struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Date         string    `json:"date"`
	Time         string    `json:"time"`
	MeetLink     *string   `json:"meetLink"`
	CalendarLink *string   `json:"calendarLink"`
}

type BookAppointmentResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	Appointment BookedAppointment `json:"appointment"`
}

type PatientAppointment struct {
	ID       uuid.UUID `json:"id"`
	Date     string    `json:"date"`
	Time     string    `json:"time"`
	Status   string    `json:"status"`
	Note     string    `json:"note"`
	MeetLink *string   `json:"meetLink"`
}

type PatientAppointmentsResponse struct {
	Success      bool                 `json:"success"`
	Email        string               `json:"email"`
	Appointments []PatientAppointment `json:"appointments"`
	Count        int                  `json:"count"`
	Message      string               `json:"message"`
}

type DateTime struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

type CancelAppointmentResponse struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Cancelled DateTime `json:"cancelled"`
}

type RescheduledTo struct {
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	MeetLink *string `json:"meetLink"`
}

type Rescheduled struct {
	From DateTime      `json:"from"`
	To   RescheduledTo `json:"to"`
}

type RescheduleAppointmentResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	Rescheduled Rescheduled `json:"rescheduled"`
}

// ======================================================
// MAPPERS
// ======================================================

func ToBookedAppointment(ap *models.Appointment) BookedAppointment {
	return BookedAppointment{
		ID:           ap.ID,
		Email:        ap.UserEmail,
		Date:         ap.AppointmentDate,
		Time:         ap.TimeLabel(),
		MeetLink:     ap.GoogleMeetLink,
		CalendarLink: ap.GoogleEventLink,
	}
}

func ToPatientAppointments(aps []models.Appointment) []PatientAppointment {
	out := make([]PatientAppointment, 0, len(aps))
	for i := range aps {
		ap := &aps[i]
		out = append(out, PatientAppointment{
			ID:       ap.ID,
			Date:     ap.AppointmentDate,
			Time:     ap.TimeLabel(),
			Status:   ap.Status,
			Note:     ap.Note,
			MeetLink: ap.GoogleMeetLink,
		})
	}
	return out
}
