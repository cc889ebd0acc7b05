package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

var messages = map[string]string{
	domain.CodeInvalidRequest: "Invalid request.",
	domain.CodeInvalidDate:    "Invalid date, expected YYYY-MM-DD.",
	domain.CodeInvalidTime:    "Invalid time, expected HH:MM with end after start.",
	domain.CodeInvalidStatus:  "Invalid status.",
	domain.CodeInvalidRange:   "Invalid date range: end must not precede start and the range is limited.",
	domain.CodeInvalidEmail:   "Invalid email address.",
	domain.CodeNoteTooLong:    "Note must be at most 500 characters.",

	domain.CodeSlotConflict:    "This time slot is already booked",
	domain.CodeSlotUnavailable: "This time slot is not available",
	domain.CodeSlotExists:      "A slot with this time already exists",
	domain.CodeSlotBooked:      "Cannot delete a booked slot. Cancel the appointment first.",

	domain.CodeAppointmentNotFound: "Appointment not found",
	domain.CodeSlotNotFound:        "Slot not found",
}

func statusFor(code string) int {
	switch code {
	case domain.CodeAppointmentNotFound, domain.CodeSlotNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// writeError renders business errors with their code and hides anything
// else behind a 500. overrides replaces the default message per code.
func writeError(c *gin.Context, log zerolog.Logger, err error, overrides map[string]string) {
	code, ok := httperr.CodeOf(err)
	if !ok {
		log.Error().Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
		httperr.Internal(c, "internal_error", "Server error")
		return
	}

	msg := overrides[code]
	if msg == "" {
		msg = messages[code]
	}
	if msg == "" {
		msg = code
	}
	httperr.Write(c, statusFor(code), code, msg)
}

// bindError turns a binding failure into a 400, naming the date or time
// problem when the validator points at one.
func bindError(c *gin.Context, err error, message string) {
	code := domain.CodeInvalidRequest

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "isodate":
			code = domain.CodeInvalidDate
		case "clock":
			code = domain.CodeInvalidTime
		}
	}

	if message == "" || code != domain.CodeInvalidRequest {
		message = messages[code]
	}
	httperr.BadRequest(c, code, message)
}
