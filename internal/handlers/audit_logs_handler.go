package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

func (h *AuditLogsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	offset := (page - 1) * limit

	q := h.db.WithContext(c.Request.Context()).Model(&models.AuditLog{})

	// --------------------------------------------------
	// Optional filters
	// --------------------------------------------------

	for _, col := range []string{"action", "entity", "source"} {
		if v := c.Query(col); v != "" {
			q = q.Where(col+" = ?", v)
		}
	}

	if v := c.Query("entityId"); v != "" {
		q = q.Where("entity_id = ?", v)
	}

	if v := c.Query("from"); v != "" {
		from, err := time.Parse(timezone.DateLayout, v)
		if err != nil {
			httperr.BadRequest(c, domain.CodeInvalidDate, messages[domain.CodeInvalidDate])
			return
		}
		q = q.Where("created_at >= ?", from)
	}

	if v := c.Query("to"); v != "" {
		to, err := time.Parse(timezone.DateLayout, v)
		if err != nil {
			httperr.BadRequest(c, domain.CodeInvalidDate, messages[domain.CodeInvalidDate])
			return
		}
		q = q.Where("created_at < ?", to.Add(24*time.Hour))
	}

	// --------------------------------------------------
	// Total
	// --------------------------------------------------

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Failed to count audit logs.")
		return
	}

	// --------------------------------------------------
	// Page
	// --------------------------------------------------

	logs := []models.AuditLog{}
	if err := q.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Failed to list audit logs.")
		return
	}

	httpresp.Raw(c, 200, gin.H{
		"page":  page,
		"limit": limit,
		"total": total,
		"logs":  logs,
	})
}
