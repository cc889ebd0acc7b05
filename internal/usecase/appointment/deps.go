package appointment

import (
	"context"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

const entityAppointment = "appointment"

// Deps are the collaborators shared by every appointment use case.
type Deps struct {
	Repo     domain.Repository
	Calendar domain.CalendarSync
	Guard    domain.SlotGuard
	Audit    *audit.Dispatcher
	Log      zerolog.Logger
	Emails   validators.EmailChecker

	// DoctorID is used when a request does not name one.
	DoctorID string
}

func (d Deps) normalized() Deps {
	if d.Calendar == nil {
		d.Calendar = domain.NoopCalendar{}
	}
	if d.Guard == nil {
		d.Guard = domain.NoopGuard{}
	}
	if d.DoctorID == "" {
		d.DoctorID = "doctor1"
	}
	return d
}

// ======================================================
// Input helpers
// ======================================================

func (d Deps) email(raw string) (string, error) {
	email := validators.NormalizeEmail(raw)
	if !d.Emails.Valid(email) {
		return "", domain.ErrInvalidEmail
	}
	return email, nil
}

func parseDate(raw string) (string, error) {
	t, err := domain.ParseDate(raw)
	if err != nil {
		return "", err
	}
	return domain.FormatDate(t), nil
}

func checkNote(raw string) (string, error) {
	if utf8.RuneCountInString(raw) > domain.MaxNoteLength {
		return "", domain.ErrNoteTooLong
	}
	return raw, nil
}

// ======================================================
// Calendar + audit side effects (after commit)
// ======================================================

func (d Deps) attachEvent(ctx context.Context, ap *models.Appointment) {
	refs := d.Calendar.CreateEvent(ctx, ap)
	if refs == nil {
		return
	}
	if err := d.Repo.SetCalendarRefs(ctx, ap.ID, *refs); err != nil {
		d.Log.Error().Err(err).
			Str("appointment_id", ap.ID.String()).
			Str("event_id", refs.EventID).
			Msg("calendar event created but refs not stored")
		return
	}
	domain.ApplyRefs(ap, refs)
}

// syncEvent mirrors the current state onto an existing event.
func (d Deps) syncEvent(ctx context.Context, ap *models.Appointment) {
	eventID := ap.EventID()
	if eventID == "" {
		return
	}
	if !domain.IsActive(ap) {
		d.Calendar.CancelEvent(ctx, eventID)
		return
	}
	d.Calendar.UpdateEvent(ctx, eventID, ap)
}

func (d Deps) record(source, action string, ap *models.Appointment, meta any) {
	ev := audit.Event{
		Source:   source,
		Action:   action,
		Entity:   entityAppointment,
		Metadata: meta,
	}
	if ap != nil {
		ev.EntityID = ap.ID.String()
	}
	d.Audit.Dispatch(ev)
}

func (d Deps) recordConflict(source, doctorID, date, start string) {
	d.record(source, "appointment_conflict", nil, map[string]string{
		"doctorId":  doctorID,
		"date":      date,
		"startTime": start,
	})
}
