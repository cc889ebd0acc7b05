package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

func testAppointment() *models.Appointment {
	return &models.Appointment{
		ID:              uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001"),
		UserEmail:       "patient@example.com",
		DoctorID:        "doctor1",
		AppointmentDate: "2025-06-02",
		StartTime:       "09:00",
		EndTime:         "09:30",
	}
}

func TestBuildEventPayload(t *testing.T) {
	g := newDisabled(Config{
		DoctorEmail: "doc@example.com",
		Timezone:    "America/New_York",
	}, zerolog.Nop())

	ev, err := g.buildEvent(testAppointment(), true)
	if err != nil {
		t.Fatalf("buildEvent: %v", err)
	}

	if ev.Summary != "Doctor Appointment - patient@example.com" {
		t.Errorf("summary = %q", ev.Summary)
	}
	if ev.Description != "Healthcare appointment" {
		t.Errorf("description = %q", ev.Description)
	}
	// June is EDT, UTC-4.
	if ev.Start.DateTime != "2025-06-02T09:00:00-04:00" {
		t.Errorf("start = %q", ev.Start.DateTime)
	}
	if ev.End.DateTime != "2025-06-02T09:30:00-04:00" {
		t.Errorf("end = %q", ev.End.DateTime)
	}
	if ev.Start.TimeZone != "America/New_York" {
		t.Errorf("start tz = %q", ev.Start.TimeZone)
	}

	if len(ev.Attendees) != 2 {
		t.Fatalf("attendees = %d, want 2", len(ev.Attendees))
	}
	if ev.Attendees[0].Email != "patient@example.com" || ev.Attendees[0].ResponseStatus != "needsAction" {
		t.Errorf("patient attendee = %+v", ev.Attendees[0])
	}
	if !ev.Attendees[1].Organizer || ev.Attendees[1].ResponseStatus != "accepted" {
		t.Errorf("doctor attendee = %+v", ev.Attendees[1])
	}

	if ev.ConferenceData == nil || ev.ConferenceData.CreateRequest.RequestId != "appointment-6f1c2d3e-0000-4000-8000-000000000001" {
		t.Errorf("conference request missing or wrong: %+v", ev.ConferenceData)
	}
	if ev.Reminders.UseDefault || len(ev.Reminders.Overrides) != 2 {
		t.Fatalf("reminders = %+v", ev.Reminders)
	}
	if ev.Reminders.Overrides[0].Minutes != 1440 || ev.Reminders.Overrides[1].Minutes != 30 {
		t.Errorf("reminder minutes = %d/%d", ev.Reminders.Overrides[0].Minutes, ev.Reminders.Overrides[1].Minutes)
	}
	if ev.GuestsCanInviteOthers == nil || *ev.GuestsCanInviteOthers {
		t.Error("guests must not invite others")
	}
	if ev.GuestsCanSeeOtherGuests == nil || !*ev.GuestsCanSeeOtherGuests {
		t.Error("guests should see other guests")
	}
}

func TestBuildEventWithoutDoctorOrConference(t *testing.T) {
	g := newDisabled(Config{}, zerolog.Nop())
	ap := testAppointment()
	ap.Note = "follow-up"

	ev, err := g.buildEvent(ap, false)
	if err != nil {
		t.Fatalf("buildEvent: %v", err)
	}
	if len(ev.Attendees) != 1 {
		t.Errorf("attendees = %d, want patient only", len(ev.Attendees))
	}
	if ev.ConferenceData != nil {
		t.Error("update payload should not request a new conference")
	}
	if ev.Description != "follow-up" {
		t.Errorf("description = %q", ev.Description)
	}
}

func TestDisabledCalendarIsNoop(t *testing.T) {
	g := New(context.Background(), Config{ClientID: "id"}, zerolog.Nop())
	if g.Enabled() {
		t.Fatal("calendar should be disabled without a refresh token")
	}
	if refs := g.CreateEvent(context.Background(), testAppointment()); refs != nil {
		t.Errorf("CreateEvent = %+v, want nil", refs)
	}
	if g.UpdateEvent(context.Background(), "evt", testAppointment()) {
		t.Error("UpdateEvent should report false")
	}
	if g.CancelEvent(context.Background(), "evt") {
		t.Error("CancelEvent should report false")
	}
}

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

func fakeCalendarServer(t *testing.T) (*GoogleCalendar, *[]recorded) {
	t.Helper()

	var mu sync.Mutex
	var calls []recorded

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if r.Body != nil && r.Method != http.MethodDelete {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()

		switch {
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case strings.HasSuffix(r.URL.Path, "/events/missing"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not Found"}}`))
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"id": "evt-1",
				"htmlLink": "https://calendar.google.com/event?eid=evt-1",
				"conferenceData": {"entryPoints": [{"uri": "https://meet.google.com/abc-defg-hij"}]}
			}`))
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := gcal.NewService(
		context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	g := NewWithService(svc, Config{CalendarID: "clinic", DoctorEmail: "doc@example.com"}, zerolog.Nop())
	return g, &calls
}

func TestCreateUpdateCancelAgainstFakeAPI(t *testing.T) {
	g, calls := fakeCalendarServer(t)
	ctx := context.Background()

	refs := g.CreateEvent(ctx, testAppointment())
	if refs == nil {
		t.Fatal("CreateEvent returned nil")
	}
	if refs.EventID != "evt-1" || refs.MeetLink != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("refs = %+v", refs)
	}

	if !g.UpdateEvent(ctx, "evt-1", testAppointment()) {
		t.Error("UpdateEvent failed")
	}
	if !g.CancelEvent(ctx, "evt-1") {
		t.Error("CancelEvent failed")
	}
	if g.UpdateEvent(ctx, "missing", testAppointment()) {
		t.Error("UpdateEvent should report a remote 404 as false")
	}
	if g.UpdateEvent(ctx, "", testAppointment()) {
		t.Error("UpdateEvent without id should be a no-op")
	}

	got := *calls
	if len(got) != 4 {
		t.Fatalf("remote calls = %d, want 4", len(got))
	}

	insert := got[0]
	if insert.method != http.MethodPost || insert.path != "/calendars/clinic/events" {
		t.Errorf("insert = %s %s", insert.method, insert.path)
	}
	if !strings.Contains(insert.query, "conferenceDataVersion=1") || !strings.Contains(insert.query, "sendUpdates=all") {
		t.Errorf("insert query = %q", insert.query)
	}
	if insert.body["summary"] != "Doctor Appointment - patient@example.com" {
		t.Errorf("insert summary = %v", insert.body["summary"])
	}

	if got[1].method != http.MethodPatch || got[1].path != "/calendars/clinic/events/evt-1" {
		t.Errorf("update = %s %s", got[1].method, got[1].path)
	}
	if got[2].method != http.MethodDelete || got[2].path != "/calendars/clinic/events/evt-1" {
		t.Errorf("cancel = %s %s", got[2].method, got[2].path)
	}
}
