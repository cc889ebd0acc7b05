package handlers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/dto"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	ucSlot "github.com/BruksfildServices01/clinic-scheduler/internal/usecase/slot"
)

type SlotHandler struct {
	list   *ucSlot.ListSlots
	create *ucSlot.CreateSlot
	bulk   *ucSlot.BulkCreateSlots
	remove *ucSlot.DeleteSlot

	log zerolog.Logger
}

func NewSlotHandler(deps ucSlot.Deps, log zerolog.Logger) *SlotHandler {
	return &SlotHandler{
		list:   ucSlot.NewListSlots(deps),
		create: ucSlot.NewCreateSlot(deps),
		bulk:   ucSlot.NewBulkCreateSlots(deps),
		remove: ucSlot.NewDeleteSlot(deps),
		log:    log,
	}
}

func (h *SlotHandler) List(c *gin.Context) {
	in := ucSlot.ListSlotsInput{
		Date:     c.Query("date"),
		DoctorID: c.Query("doctorId"),
	}

	if raw := c.Query("available"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httperr.BadRequest(c, domain.CodeInvalidRequest, "available must be true or false.")
			return
		}
		in.AvailableOnly = v
	}

	slots, err := h.list.Execute(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.List[models.Slot](c, slots)
}

func (h *SlotHandler) Create(c *gin.Context) {
	var req dto.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Required: date, startTime and endTime")
		return
	}

	s, err := h.create.Execute(c.Request.Context(), ucSlot.CreateSlotInput{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		DoctorID:  req.DoctorID,
	})
	if err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.Created(c, "Slot created successfully", s)
}

func (h *SlotHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkCreateSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Required: startDate, endDate and at least one time slot")
		return
	}

	ranges := make([]ucSlot.TimeRange, 0, len(req.TimeSlots))
	for _, tr := range req.TimeSlots {
		ranges = append(ranges, ucSlot.TimeRange{StartTime: tr.StartTime, EndTime: tr.EndTime})
	}

	n, err := h.bulk.Execute(c.Request.Context(), ucSlot.BulkCreateInput{
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TimeSlots:       ranges,
		DoctorID:        req.DoctorID,
		ExcludeWeekends: req.ExcludeWeekends,
	})
	if err != nil {
		writeError(c, h.log, err, map[string]string{
			domain.CodeInvalidRange: "Invalid date range: endDate must not precede startDate and the range is limited to 366 days.",
		})
		return
	}

	httpresp.Created(c, fmt.Sprintf("%d slots created successfully", n), dto.BulkCreateResult{Created: n})
}

func (h *SlotHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.remove.Execute(c.Request.Context(), id); err != nil {
		writeError(c, h.log, err, nil)
		return
	}

	httpresp.OK(c, "Slot deleted successfully", nil)
}
