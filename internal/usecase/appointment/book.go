package appointment

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type BookAppointmentInput struct {
	Email string
	Date  string
	Time  string
	Note  string
}

// BookAppointment is the agent booking path. A free slot must exist; the
// appointment inherits its coordinates.
type BookAppointment struct {
	deps Deps
}

func NewBookAppointment(deps Deps) *BookAppointment {
	return &BookAppointment{deps: deps.normalized()}
}

func (uc *BookAppointment) Execute(
	ctx context.Context,
	in BookAppointmentInput,
) (*models.Appointment, error) {

	email, err := uc.deps.email(in.Email)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	start, err := domain.NormalizeClock(in.Time)
	if err != nil {
		return nil, err
	}
	text, err := checkNote(in.Note)
	if err != nil {
		return nil, err
	}

	doctorID := uc.deps.DoctorID

	release, err := uc.deps.Guard.Acquire(ctx, doctorID, day, start)
	if err != nil {
		uc.deps.recordConflict(audit.SourceAgent, doctorID, day, start)
		return nil, err
	}
	defer release()

	var ap *models.Appointment

	err = uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		slot, err := domain.CheckSlotAuthoritative(ctx, tx, doctorID, day, start)
		if err != nil {
			return err
		}

		ap = domain.NewFromSlot(slot, email, text)
		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		return tx.BookSlot(ctx, slot.ID, ap.ID)
	})
	if err != nil {
		if httperr.IsBusiness(err, domain.CodeSlotUnavailable) {
			uc.deps.recordConflict(audit.SourceAgent, doctorID, day, start)
		}
		return nil, err
	}

	uc.deps.attachEvent(ctx, ap)
	uc.deps.record(audit.SourceAgent, "appointment_booked", ap, nil)

	return ap, nil
}
