package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	ucAppointment "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
	ucSlot "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/slot"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

// ======================================================
// HANDLER
// ======================================================

// AgentHandler serves the voice/LLM surface: loose inputs (email, date,
// time) and flat, sentence-friendly responses.
type AgentHandler struct {
	availability *ucSlot.Availability

	book       *ucAppointment.BookAppointment
	list       *ucAppointment.ListAppointments
	cancel     *ucAppointment.CancelAppointment
	reschedule *ucAppointment.RescheduleAppointment

	log zerolog.Logger
}

func NewAgentHandler(apDeps ucAppointment.Deps, slotDeps ucSlot.Deps) *AgentHandler {
	return &AgentHandler{
		availability: ucSlot.NewAvailability(slotDeps),
		book:         ucAppointment.NewBookAppointment(apDeps),
		list:         ucAppointment.NewListAppointments(apDeps.Repo),
		cancel:       ucAppointment.NewCancelAppointment(apDeps),
		reschedule:   ucAppointment.NewRescheduleAppointment(apDeps),
		log:          apDeps.Log,
	}
}

func countMessage(n int, found, none string) string {
	if n == 0 {
		return none
	}
	return fmt.Sprintf(found, n)
}

// ======================================================
// AVAILABILITY
// ======================================================

func (h *AgentHandler) CheckAvailability(c *gin.Context) {
	var req dto.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Date is required")
		return
	}

	day, slots, err := h.availability.Day(c.Request.Context(), req.Date)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		Success:        true,
		Date:           day,
		AvailableSlots: slots,
		Count:          len(slots),
		Message:        countMessage(len(slots), "Found %d available slots", "No available slots for this date"),
	})
}

func (h *AgentHandler) CheckAvailabilityRange(c *gin.Context) {
	var req dto.CheckAvailabilityRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Required: startDate and endDate")
		return
	}

	res, err := h.availability.Range(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		writeError(c, h.log, err, map[string]string{
			domain.CodeInvalidRange: fmt.Sprintf("endDate must not precede startDate and the range may not exceed %d days", domain.MaxRangeDays),
		})
		return
	}

	h.writeRange(c, res)
}

func (h *AgentHandler) CheckAvailabilityNextDays(c *gin.Context) {
	var req dto.NextDaysRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err, "days must be a positive number")
		return
	}

	res, err := h.availability.NextDays(c.Request.Context(), req.Days)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	h.writeRange(c, res)
}

func (h *AgentHandler) writeRange(c *gin.Context, res *ucSlot.RangeResult) {
	total := res.TotalSlots()
	c.JSON(http.StatusOK, dto.RangeAvailabilityResponse{
		Success:      true,
		StartDate:    res.StartDate,
		EndDate:      res.EndDate,
		Availability: res.Days,
		TotalSlots:   total,
		Message: countMessage(total,
			fmt.Sprintf("Found %%d available slots between %s and %s", res.StartDate, res.EndDate),
			"No available slots in this period"),
	})
}

func (h *AgentHandler) GetNextAvailable(c *gin.Context) {
	var req dto.NextAvailableRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		bindError(c, err, "")
		return
	}

	from, slots, err := h.availability.NextAvailable(c.Request.Context(), req.FromDate, req.Limit)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	c.JSON(http.StatusOK, dto.NextAvailableResponse{
		Success:  true,
		FromDate: from,
		Slots:    slots,
		Count:    len(slots),
		Message:  countMessage(len(slots), "Found %d upcoming available slots", "No upcoming available slots"),
	})
}

// ======================================================
// APPOINTMENTS
// ======================================================

func (h *AgentHandler) BookAppointment(c *gin.Context) {
	var req dto.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Required: email, date, and time")
		return
	}

	ap, err := h.book.Execute(c.Request.Context(), ucAppointment.BookAppointmentInput{
		Email: req.Email,
		Date:  req.Date,
		Time:  req.Time,
		Note:  req.Note,
	})
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	c.JSON(http.StatusCreated, dto.BookAppointmentResponse{
		Success:     true,
		Message:     "Appointment booked successfully",
		Appointment: dto.ToBookedAppointment(ap),
	})
}

func (h *AgentHandler) GetAppointments(c *gin.Context) {
	var req dto.GetAppointmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Email is required")
		return
	}

	aps, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Email:            req.Email,
		ExcludeCancelled: true,
	})
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	out := dto.ToPatientAppointments(aps)
	c.JSON(http.StatusOK, dto.PatientAppointmentsResponse{
		Success:      true,
		Email:        validators.NormalizeEmail(req.Email),
		Appointments: out,
		Count:        len(out),
		Message:      countMessage(len(out), "Found %d appointment(s)", "No appointments found"),
	})
}

func (h *AgentHandler) CancelAppointment(c *gin.Context) {
	var req dto.CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Required: email and date")
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), ucAppointment.CancelAppointmentInput{
		Email: req.Email,
		Date:  req.Date,
	})
	if err != nil {
		writeError(c, h.log, err, map[string]string{
			domain.CodeAppointmentNotFound: "No appointment found for this email and date",
		})
		return
	}

	c.JSON(http.StatusOK, dto.CancelAppointmentResponse{
		Success:   true,
		Message:   "Appointment cancelled successfully",
		Cancelled: dto.DateTime{Date: ap.AppointmentDate, Time: ap.TimeLabel()},
	})
}

func (h *AgentHandler) RescheduleAppointment(c *gin.Context) {
	var req dto.RescheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Required: email, currentDate, newDate, and newTime")
		return
	}

	res, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleAppointmentInput{
		Email:       req.Email,
		CurrentDate: req.CurrentDate,
		NewDate:     req.NewDate,
		NewTime:     req.NewTime,
	})
	if err != nil {
		writeError(c, h.log, err, map[string]string{
			domain.CodeAppointmentNotFound: "No appointment found to reschedule",
			domain.CodeSlotUnavailable:     "New time slot is not available",
		})
		return
	}

	ap := res.Appointment
	c.JSON(http.StatusOK, dto.RescheduleAppointmentResponse{
		Success: true,
		Message: "Appointment rescheduled successfully",
		Rescheduled: dto.Rescheduled{
			From: dto.DateTime{Date: res.FromDate, Time: res.FromTime},
			To: dto.RescheduledTo{
				Date:     ap.AppointmentDate,
				Time:     ap.TimeLabel(),
				MeetLink: ap.GoogleMeetLink,
			},
		},
	})
}

// bindOptionalJSON accepts an empty body for endpoints whose fields all
// have defaults.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}
