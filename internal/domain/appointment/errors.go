package appointment

import "github.com/BruksfildServices01/clinic-scheduler/internal/httperr"

const (
	CodeInvalidRequest = "invalid_request"
	CodeInvalidDate    = "invalid_date"
	CodeInvalidTime    = "invalid_time"
	CodeInvalidStatus  = "invalid_status"
	CodeInvalidRange   = "invalid_range"
	CodeInvalidEmail   = "invalid_email"
	CodeNoteTooLong    = "note_too_long"

	CodeSlotConflict    = "slot_conflict"
	CodeSlotUnavailable = "slot_unavailable"
	CodeSlotExists      = "slot_exists"
	CodeSlotBooked      = "slot_booked"

	CodeAppointmentNotFound = "appointment_not_found"
	CodeSlotNotFound        = "slot_not_found"
)

var (
	ErrInvalidDate   = httperr.ErrBusiness(CodeInvalidDate)
	ErrInvalidTime   = httperr.ErrBusiness(CodeInvalidTime)
	ErrInvalidStatus = httperr.ErrBusiness(CodeInvalidStatus)
	ErrInvalidRange  = httperr.ErrBusiness(CodeInvalidRange)
	ErrInvalidEmail  = httperr.ErrBusiness(CodeInvalidEmail)
	ErrNoteTooLong   = httperr.ErrBusiness(CodeNoteTooLong)

	ErrSlotConflict    = httperr.ErrBusiness(CodeSlotConflict)
	ErrSlotUnavailable = httperr.ErrBusiness(CodeSlotUnavailable)
	ErrSlotExists      = httperr.ErrBusiness(CodeSlotExists)
	ErrSlotBooked      = httperr.ErrBusiness(CodeSlotBooked)

	ErrAppointmentNotFound = httperr.ErrBusiness(CodeAppointmentNotFound)
	ErrSlotNotFound        = httperr.ErrBusiness(CodeSlotNotFound)
)
