package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const (
	defaultDescription = "Healthcare appointment"
	sendUpdatesAll     = "all"

	emailReminderMinutes = 24 * 60
	popupReminderMinutes = 30
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	RefreshToken string
	CalendarID   string
	DoctorEmail  string
	Timezone     string
}

// OAuthConfig is shared by the sync client and the consent endpoints.
func OAuthConfig(cfg Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.RedirectURI,
		Scopes:       []string{gcal.CalendarScope, gcal.CalendarEventsScope},
	}
}

// GoogleCalendar is the best-effort mirror of appointments. It is built
// once at startup; when credentials are missing it stays disabled for the
// life of the process.
type GoogleCalendar struct {
	enabled    bool
	service    *gcal.Service
	calendarID string
	doctor     string
	tz         string
	loc        *time.Location
	log        zerolog.Logger
}

func New(ctx context.Context, cfg Config, log zerolog.Logger) *GoogleCalendar {
	g := newDisabled(cfg, log)

	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		log.Warn().Msg("google calendar credentials missing, calendar sync disabled")
		return g
	}

	oc := OAuthConfig(cfg)
	client := oc.Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := NewService(ctx, client)
	if err != nil {
		log.Error().Err(err).Msg("google calendar init failed, calendar sync disabled")
		return g
	}

	g.service = svc
	g.enabled = true
	log.Info().Str("calendar_id", g.calendarID).Msg("google calendar sync enabled")
	return g
}

// NewWithService wraps an already constructed service.
func NewWithService(svc *gcal.Service, cfg Config, log zerolog.Logger) *GoogleCalendar {
	g := newDisabled(cfg, log)
	g.service = svc
	g.enabled = svc != nil
	return g
}

func NewService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*gcal.Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return svc, nil
}

func newDisabled(cfg Config, log zerolog.Logger) *GoogleCalendar {
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	tz := cfg.Timezone
	if !timezone.IsValid(tz) {
		tz = timezone.DefaultTimezone
	}
	return &GoogleCalendar{
		calendarID: calendarID,
		doctor:     cfg.DoctorEmail,
		tz:         tz,
		loc:        timezone.Location(tz),
		log:        log.With().Str("component", "calendar").Logger(),
	}
}

func (g *GoogleCalendar) Enabled() bool {
	return g.enabled
}

// ======================================================
// Sync operations
// ======================================================

func (g *GoogleCalendar) CreateEvent(ctx context.Context, ap *models.Appointment) *domain.CalendarRefs {
	if !g.enabled {
		return nil
	}

	ev, err := g.buildEvent(ap, true)
	if err != nil {
		g.log.Warn().Err(err).Str("appointment_id", ap.ID.String()).Msg("calendar event not built")
		return nil
	}

	created, err := g.service.Events.
		Insert(g.calendarID, ev).
		ConferenceDataVersion(1).
		SendUpdates(sendUpdatesAll).
		Context(ctx).
		Do()
	if err != nil {
		g.log.Warn().Err(err).Str("appointment_id", ap.ID.String()).Msg("calendar create failed")
		return nil
	}

	return &domain.CalendarRefs{
		EventID:  created.Id,
		Link:     created.HtmlLink,
		MeetLink: meetLink(created),
	}
}

func (g *GoogleCalendar) UpdateEvent(ctx context.Context, eventID string, ap *models.Appointment) bool {
	if !g.enabled || eventID == "" {
		return false
	}

	ev, err := g.buildEvent(ap, false)
	if err != nil {
		g.log.Warn().Err(err).Str("event_id", eventID).Msg("calendar event not built")
		return false
	}

	if _, err := g.service.Events.
		Patch(g.calendarID, eventID, ev).
		SendUpdates(sendUpdatesAll).
		Context(ctx).
		Do(); err != nil {
		g.log.Warn().Err(err).Str("event_id", eventID).Msg("calendar update failed")
		return false
	}
	return true
}

func (g *GoogleCalendar) CancelEvent(ctx context.Context, eventID string) bool {
	if !g.enabled || eventID == "" {
		return false
	}

	if err := g.service.Events.
		Delete(g.calendarID, eventID).
		SendUpdates(sendUpdatesAll).
		Context(ctx).
		Do(); err != nil {
		g.log.Warn().Err(err).Str("event_id", eventID).Msg("calendar cancel failed")
		return false
	}
	return true
}

// ======================================================
// Payload
// ======================================================

func (g *GoogleCalendar) buildEvent(ap *models.Appointment, withConference bool) (*gcal.Event, error) {
	start, err := timezone.At(ap.AppointmentDate, ap.StartTime, g.loc)
	if err != nil {
		return nil, fmt.Errorf("start instant: %w", err)
	}
	end, err := timezone.At(ap.AppointmentDate, ap.EndTime, g.loc)
	if err != nil {
		return nil, fmt.Errorf("end instant: %w", err)
	}

	description := ap.Note
	if description == "" {
		description = defaultDescription
	}

	attendees := []*gcal.EventAttendee{
		{Email: ap.UserEmail, ResponseStatus: "needsAction"},
	}
	if g.doctor != "" {
		attendees = append(attendees, &gcal.EventAttendee{
			Email:          g.doctor,
			ResponseStatus: "accepted",
			Organizer:      true,
		})
	}

	ev := &gcal.Event{
		Summary:     "Doctor Appointment - " + ap.UserEmail,
		Description: description,
		Start: &gcal.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: g.tz,
		},
		End: &gcal.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: g.tz,
		},
		Attendees: attendees,
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: emailReminderMinutes},
				{Method: "popup", Minutes: popupReminderMinutes},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		GuestsCanModify:         false,
		GuestsCanInviteOthers:   googleapi.Bool(false),
		GuestsCanSeeOtherGuests: googleapi.Bool(true),
		ForceSendFields:         []string{"GuestsCanModify"},
	}

	if withConference {
		ev.ConferenceData = &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId: "appointment-" + ap.ID.String(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{
					Type: "hangoutsMeet",
				},
			},
		}
	}

	return ev, nil
}

func meetLink(ev *gcal.Event) string {
	if ev.HangoutLink != "" {
		return ev.HangoutLink
	}
	if ev.ConferenceData != nil && len(ev.ConferenceData.EntryPoints) > 0 {
		return ev.ConferenceData.EntryPoints[0].Uri
	}
	return ""
}

var _ domain.CalendarSync = (*GoogleCalendar)(nil)
