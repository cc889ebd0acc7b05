package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/clinic-scheduler/internal/config"
	"github.com/BruksfildServices01/clinic-scheduler/internal/db/dbtest"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const day = "2030-01-15"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validators.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// ======================================================
// Helpers
// ======================================================

type apiError struct {
	Success bool   `json:"success"`
	Code    string `json:"errorCode"`
	Message string `json:"message"`
}

type server struct {
	t  *testing.T
	r  *gin.Engine
	db *gorm.DB
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := dbtest.New(t)
	r := gin.New()

	RegisterRoutes(r, db, &config.Config{
		Timezone:        "America/New_York",
		DefaultDoctorID: "doctor1",
		JWTSecret:       "test-secret",
	}, Infra{Log: zerolog.Nop()})

	return &server{t: t, r: r, db: db}
}

func (s *server) do(method, path string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	return rec
}

func (s *server) expect(rec *httptest.ResponseRecorder, status int, out any) {
	s.t.Helper()
	if rec.Code != status {
		s.t.Fatalf("status = %d, want %d; body = %s", rec.Code, status, rec.Body.String())
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		s.t.Fatalf("decode body: %v; body = %s", err, rec.Body.String())
	}
}

func (s *server) expectError(rec *httptest.ResponseRecorder, status int, code string) apiError {
	s.t.Helper()
	var e apiError
	s.expect(rec, status, &e)
	if e.Success || e.Code != code {
		s.t.Fatalf("error = %+v, want code %q", e, code)
	}
	return e
}

func (s *server) slot(start, end string) models.Slot {
	s.t.Helper()
	var out struct {
		Data models.Slot `json:"data"`
	}
	s.expect(s.do(http.MethodPost, "/api/slots", gin.H{
		"date":      day,
		"startTime": start,
		"endTime":   end,
	}), http.StatusCreated, &out)
	return out.Data
}

type slotList struct {
	Data  []models.Slot `json:"data"`
	Count int           `json:"count"`
}

func (s *server) freeSlots() []models.Slot {
	s.t.Helper()
	var out slotList
	s.expect(s.do(http.MethodGet, "/api/slots?date="+day+"&available=true", nil), http.StatusOK, &out)
	return out.Data
}

type bookResponse struct {
	Success     bool `json:"success"`
	Appointment struct {
		ID    uuid.UUID `json:"id"`
		Email string    `json:"email"`
		Date  string    `json:"date"`
		Time  string    `json:"time"`
	} `json:"appointment"`
}

func (s *server) book(email, at string) *httptest.ResponseRecorder {
	return s.do(http.MethodPost, "/api/llm/book-appointment", gin.H{
		"email": email,
		"date":  day,
		"time":  at,
	})
}

// ======================================================
// Agent flows
// ======================================================

func TestBookCancelReleasesSlot(t *testing.T) {
	s := newServer(t)
	s.slot("09:00", "09:30")
	s.slot("10:00", "10:30")

	var booked bookResponse
	s.expect(s.book("Jane@Example.com", "09:00"), http.StatusCreated, &booked)
	if !booked.Success || booked.Appointment.Time != "09:00 - 09:30" || booked.Appointment.Email != "jane@example.com" {
		t.Fatalf("booking = %+v", booked)
	}

	e := s.expectError(s.book("other@example.com", "09:00"), http.StatusBadRequest, "slot_unavailable")
	if e.Message != "This time slot is not available" {
		t.Errorf("message = %q", e.Message)
	}

	var avail struct {
		Count          int `json:"count"`
		AvailableSlots []struct {
			Time string `json:"time"`
		} `json:"availableSlots"`
	}
	s.expect(s.do(http.MethodPost, "/api/llm/check-availability", gin.H{"date": day}), http.StatusOK, &avail)
	if avail.Count != 1 || avail.AvailableSlots[0].Time != "10:00 - 10:30" {
		t.Fatalf("availability = %+v", avail)
	}

	var cancelled struct {
		Cancelled struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"cancelled"`
	}
	s.expect(s.do(http.MethodPost, "/api/llm/cancel-appointment", gin.H{
		"email": "jane@example.com",
		"date":  day,
	}), http.StatusOK, &cancelled)
	if cancelled.Cancelled.Time != "09:00 - 09:30" {
		t.Errorf("cancelled = %+v", cancelled)
	}

	free := s.freeSlots()
	if len(free) != 2 || free[0].StartTime != "09:00" {
		t.Fatalf("free slots after cancel = %+v", free)
	}

	var mine struct {
		Email string `json:"email"`
		Count int    `json:"count"`
	}
	s.expect(s.do(http.MethodPost, "/api/llm/get-appointments", gin.H{"email": " Jane@Example.COM "}), http.StatusOK, &mine)
	if mine.Count != 0 {
		t.Errorf("active appointments after cancel = %d", mine.Count)
	}
	if mine.Email != "jane@example.com" {
		t.Errorf("echoed email = %q, want normalized", mine.Email)
	}
}

func TestRescheduleMovesBooking(t *testing.T) {
	s := newServer(t)
	s.slot("09:00", "09:30")
	s.slot("10:00", "10:30")
	s.expect(s.book("jane@example.com", "09:00"), http.StatusCreated, nil)

	var out struct {
		Rescheduled struct {
			From struct {
				Time string `json:"time"`
			} `json:"from"`
			To struct {
				Date string `json:"date"`
				Time string `json:"time"`
			} `json:"to"`
		} `json:"rescheduled"`
	}
	s.expect(s.do(http.MethodPost, "/api/llm/reschedule-appointment", gin.H{
		"email":       "jane@example.com",
		"currentDate": day,
		"newDate":     day,
		"newTime":     "10:00",
	}), http.StatusOK, &out)

	if out.Rescheduled.From.Time != "09:00 - 09:30" || out.Rescheduled.To.Time != "10:00 - 10:30" {
		t.Fatalf("rescheduled = %+v", out.Rescheduled)
	}

	free := s.freeSlots()
	if len(free) != 1 || free[0].StartTime != "09:00" {
		t.Fatalf("free slots after reschedule = %+v", free)
	}
}

func TestAgentErrors(t *testing.T) {
	s := newServer(t)
	s.slot("09:00", "09:30")
	s.expect(s.book("jane@example.com", "09:00"), http.StatusCreated, nil)

	tests := []struct {
		name    string
		path    string
		body    gin.H
		status  int
		code    string
		message string
	}{
		{
			name:   "missing date",
			path:   "/api/llm/check-availability",
			body:   gin.H{},
			status: http.StatusBadRequest,
			code:   "invalid_request",
		},
		{
			name:   "malformed date",
			path:   "/api/llm/check-availability",
			body:   gin.H{"date": "15/01/2030"},
			status: http.StatusBadRequest,
			code:   "invalid_date",
		},
		{
			name:   "range too long",
			path:   "/api/llm/check-availability-range",
			body:   gin.H{"startDate": "2030-01-01", "endDate": "2030-06-01"},
			status: http.StatusBadRequest,
			code:   "invalid_range",
		},
		{
			name:   "bad email",
			path:   "/api/llm/book-appointment",
			body:   gin.H{"email": "nope", "date": day, "time": "10:00"},
			status: http.StatusBadRequest,
			code:   "invalid_email",
		},
		{
			name:    "cancel unknown",
			path:    "/api/llm/cancel-appointment",
			body:    gin.H{"email": "ghost@example.com", "date": day},
			status:  http.StatusNotFound,
			code:    "appointment_not_found",
			message: "No appointment found for this email and date",
		},
		{
			name:    "reschedule into missing slot",
			path:    "/api/llm/reschedule-appointment",
			body:    gin.H{"email": "jane@example.com", "currentDate": day, "newDate": day, "newTime": "11:00"},
			status:  http.StatusBadRequest,
			code:    "slot_unavailable",
			message: "New time slot is not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := s.expectError(s.do(http.MethodPost, tt.path, tt.body), tt.status, tt.code)
			if tt.message != "" && e.Message != tt.message {
				t.Errorf("message = %q, want %q", e.Message, tt.message)
			}
		})
	}
}

func TestNextAvailableAcceptsEmptyBody(t *testing.T) {
	s := newServer(t)
	s.slot("09:00", "09:30")
	s.slot("10:00", "10:30")

	req := httptest.NewRequest(http.MethodPost, "/api/llm/get-next-available", nil)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)

	var out struct {
		Count int `json:"count"`
		Slots []struct {
			Date string `json:"date"`
			Time string `json:"time"`
		} `json:"slots"`
	}
	s.expect(rec, http.StatusOK, &out)
	if out.Count != 2 || out.Slots[0].Date != day || out.Slots[0].Time != "09:00 - 09:30" {
		t.Fatalf("next available = %+v", out)
	}
}

func TestCheckAvailabilityRange(t *testing.T) {
	s := newServer(t)
	s.slot("09:00", "09:30")

	var out struct {
		TotalSlots   int `json:"totalSlots"`
		Availability []struct {
			Date string `json:"date"`
		} `json:"availability"`
	}
	s.expect(s.do(http.MethodPost, "/api/llm/check-availability-range", gin.H{
		"startDate": "2030-01-14",
		"endDate":   "2030-01-20",
	}), http.StatusOK, &out)

	if out.TotalSlots != 1 || len(out.Availability) != 1 || out.Availability[0].Date != day {
		t.Fatalf("range = %+v", out)
	}
}

// ======================================================
// CRUD
// ======================================================

func TestAppointmentCRUD(t *testing.T) {
	s := newServer(t)
	slot := s.slot("09:00", "09:30")

	var created struct {
		Data models.Appointment `json:"data"`
	}
	s.expect(s.do(http.MethodPost, "/api/appointments", gin.H{
		"userEmail":       "jane@example.com",
		"appointmentDate": day,
		"startTime":       "09:00",
		"endTime":         "09:30",
	}), http.StatusCreated, &created)
	if created.Data.Status != "scheduled" {
		t.Fatalf("status = %q", created.Data.Status)
	}

	s.expectError(s.do(http.MethodPost, "/api/appointments", gin.H{
		"userEmail":       "other@example.com",
		"appointmentDate": day,
		"startTime":       "09:00",
		"endTime":         "09:30",
	}), http.StatusBadRequest, "slot_conflict")

	s.expectError(s.do(http.MethodDelete, "/api/slots/"+slot.ID.String(), nil), http.StatusBadRequest, "slot_booked")

	id := created.Data.ID.String()

	var list struct {
		Count int `json:"count"`
	}
	s.expect(s.do(http.MethodGet, "/api/appointments?email=jane@example.com", nil), http.StatusOK, &list)
	if list.Count != 1 {
		t.Errorf("list count = %d", list.Count)
	}

	var updated struct {
		Data models.Appointment `json:"data"`
	}
	s.expect(s.do(http.MethodPut, "/api/appointments/"+id, gin.H{"note": "bring results"}), http.StatusOK, &updated)
	if updated.Data.Note != "bring results" {
		t.Errorf("note = %q", updated.Data.Note)
	}

	s.expect(s.do(http.MethodPatch, "/api/appointments/"+id+"/cancel", nil), http.StatusOK, nil)
	if free := s.freeSlots(); len(free) != 1 {
		t.Fatalf("slot not released: %+v", free)
	}

	s.expect(s.do(http.MethodDelete, "/api/appointments/"+id, nil), http.StatusOK, nil)
	s.expectError(s.do(http.MethodGet, "/api/appointments/"+id, nil), http.StatusNotFound, "appointment_not_found")
}

func TestCRUDErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad id", http.MethodGet, "/api/appointments/not-a-uuid", nil, http.StatusBadRequest, "invalid_request"},
		{"unknown id", http.MethodGet, "/api/appointments/" + uuid.NewString(), nil, http.StatusNotFound, "appointment_not_found"},
		{"unknown slot", http.MethodDelete, "/api/slots/" + uuid.NewString(), nil, http.StatusNotFound, "slot_not_found"},
		{"bad status filter", http.MethodGet, "/api/appointments?status=done", nil, http.StatusBadRequest, "invalid_status"},
		{"bad available flag", http.MethodGet, "/api/slots?available=maybe", nil, http.StatusBadRequest, "invalid_request"},
		{"slot bad date", http.MethodPost, "/api/slots", gin.H{"date": "2030-13-01", "startTime": "09:00", "endTime": "09:30"}, http.StatusBadRequest, "invalid_date"},
		{"slot bad time", http.MethodPost, "/api/slots", gin.H{"date": day, "startTime": "9am", "endTime": "09:30"}, http.StatusBadRequest, "invalid_time"},
		{"slot end before start", http.MethodPost, "/api/slots", gin.H{"date": day, "startTime": "10:00", "endTime": "09:30"}, http.StatusBadRequest, "invalid_time"},
		{"bulk without time slots", http.MethodPost, "/api/slots/bulk", gin.H{"startDate": day, "endDate": day, "timeSlots": []gin.H{}}, http.StatusBadRequest, "invalid_request"},
		{"bulk reversed range", http.MethodPost, "/api/slots/bulk", gin.H{
			"startDate": "2030-02-01",
			"endDate":   "2030-01-01",
			"timeSlots": []gin.H{{"startTime": "09:00", "endTime": "09:30"}},
		}, http.StatusBadRequest, "invalid_range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.expectError(s.do(tt.method, tt.path, tt.body), tt.status, tt.code)
		})
	}
}

func TestBulkCreateSlots(t *testing.T) {
	s := newServer(t)

	body := gin.H{
		"startDate":       "2030-01-14",
		"endDate":         "2030-01-20",
		"excludeWeekends": true,
		"timeSlots": []gin.H{
			{"startTime": "09:00", "endTime": "09:30"},
			{"startTime": "09:30", "endTime": "10:00"},
		},
	}

	var out struct {
		Message string `json:"message"`
		Data    struct {
			Created int `json:"created"`
		} `json:"data"`
	}
	s.expect(s.do(http.MethodPost, "/api/slots/bulk", body), http.StatusCreated, &out)
	if out.Data.Created != 10 || out.Message != "10 slots created successfully" {
		t.Fatalf("bulk = %+v", out)
	}

	s.expect(s.do(http.MethodPost, "/api/slots/bulk", body), http.StatusCreated, &out)
	if out.Data.Created != 0 {
		t.Errorf("rerun created %d", out.Data.Created)
	}

	s.expectError(s.do(http.MethodPost, "/api/slots", gin.H{
		"date":      day,
		"startTime": "09:00",
		"endTime":   "09:30",
	}), http.StatusBadRequest, "slot_exists")
}

// ======================================================
// Auxiliary endpoints
// ======================================================

func TestHealth(t *testing.T) {
	s := newServer(t)

	var live struct {
		Status string `json:"status"`
	}
	s.expect(s.do(http.MethodGet, "/health", nil), http.StatusOK, &live)
	if live.Status != "ok" {
		t.Errorf("liveness = %+v", live)
	}

	var api struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
	s.expect(s.do(http.MethodGet, "/api/health", nil), http.StatusOK, &api)
	if !api.Success || api.Message != "Server is running" || api.Timestamp == "" {
		t.Errorf("api health = %+v", api)
	}
}

func TestGoogleAuthWithoutCredentials(t *testing.T) {
	s := newServer(t)
	s.expectError(s.do(http.MethodGet, "/api/auth/google", nil), http.StatusInternalServerError, "calendar_not_configured")
}

func TestAuditLogs(t *testing.T) {
	s := newServer(t)

	for _, action := range []string{"slot_created", "appointment_booked", "appointment_booked"} {
		if err := s.db.Create(&models.AuditLog{Source: "api", Action: action, Entity: "appointment"}).Error; err != nil {
			t.Fatalf("seed audit log: %v", err)
		}
	}

	var out struct {
		Total int64             `json:"total"`
		Limit int               `json:"limit"`
		Logs  []models.AuditLog `json:"logs"`
	}
	s.expect(s.do(http.MethodGet, "/api/audit-logs?action=appointment_booked&limit=1", nil), http.StatusOK, &out)
	if out.Total != 2 || out.Limit != 1 || len(out.Logs) != 1 {
		t.Fatalf("audit page = %+v", out)
	}

	s.expectError(s.do(http.MethodGet, "/api/audit-logs?from=yesterday", nil), http.StatusBadRequest, "invalid_date")
}
