package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	list   *ucAppointment.ListAppointments
	get    *ucAppointment.GetAppointment
	create *ucAppointment.CreateAppointment
	update *ucAppointment.UpdateAppointment
	cancel *ucAppointment.CancelAppointment
	remove *ucAppointment.DeleteAppointment

	log zerolog.Logger
}

func NewAppointmentHandler(deps ucAppointment.Deps) *AppointmentHandler {
	return &AppointmentHandler{
		list:   ucAppointment.NewListAppointments(deps.Repo),
		get:    ucAppointment.NewGetAppointment(deps.Repo),
		create: ucAppointment.NewCreateAppointment(deps),
		update: ucAppointment.NewUpdateAppointment(deps),
		cancel: ucAppointment.NewCancelAppointment(deps),
		remove: ucAppointment.NewDeleteAppointment(deps),
		log:    deps.Log,
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		httperr.BadRequest(c, domain.CodeInvalidRequest, "Invalid id.")
		return uuid.Nil, false
	}
	return id, true
}

// ======================================================
// LIST / GET
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	aps, err := h.list.Execute(c.Request.Context(), ucAppointment.ListAppointmentsInput{
		Email:  c.Query("email"),
		Date:   c.Query("date"),
		Status: c.Query("status"),
	})
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.List[models.Appointment](c, aps)
}

func (h *AppointmentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ap, err := h.get.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.OK(c, "", ap)
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	var req dto.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Required: userEmail, appointmentDate, startTime and endTime")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		UserEmail: req.UserEmail,
		DoctorID:  req.DoctorID,
		Date:      req.AppointmentDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
	})
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.Created(c, "Appointment created successfully", ap)
}

// ======================================================
// UPDATE
// ======================================================

func (h *AppointmentHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "")
		return
	}

	ap, err := h.update.Execute(c.Request.Context(), ucAppointment.UpdateAppointmentInput{
		ID:        id,
		UserEmail: req.UserEmail,
		Date:      req.AppointmentDate,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Note:      req.Note,
		Status:    req.Status,
	})
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.OK(c, "Appointment updated successfully", ap)
}

// ======================================================
// CANCEL / DELETE
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	ap, err := h.cancel.Execute(c.Request.Context(), ucAppointment.CancelAppointmentInput{ID: id})
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.OK(c, "Appointment cancelled successfully", ap)
}

func (h *AppointmentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.OK(c, "Appointment deleted successfully", nil)
}
