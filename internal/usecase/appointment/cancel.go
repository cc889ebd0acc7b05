package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// CancelAppointmentInput addresses an appointment by ID, or by email and
// date when ID is zero (agent flow).
type CancelAppointmentInput struct {
	ID    uuid.UUID
	Email string
	Date  string
}

type CancelAppointment struct {
	deps Deps
}

func NewCancelAppointment(deps Deps) *CancelAppointment {
	return &CancelAppointment{deps: deps.normalized()}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	in CancelAppointmentInput,
) (*models.Appointment, error) {

	source := audit.SourceAPI
	var email, day string
	if in.ID == uuid.Nil {
		source = audit.SourceAgent

		var err error
		if email, err = uc.deps.email(in.Email); err != nil {
			return nil, err
		}
		if day, err = parseDate(in.Date); err != nil {
			return nil, err
		}
	}

	var ap *models.Appointment

	err := uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		if in.ID != uuid.Nil {
			ap, err = tx.GetAppointment(ctx, in.ID)
		} else {
			ap, err = tx.FindActiveByEmailDate(ctx, email, day)
		}
		if err != nil {
			return err
		}
		if ap == nil {
			return domain.ErrAppointmentNotFound
		}

		domain.Cancel(ap)
		if err := tx.SaveAppointment(ctx, ap); err != nil {
			return err
		}

		_, err = tx.ReleaseSlotsFor(ctx, ap.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if eventID := ap.EventID(); eventID != "" {
		uc.deps.Calendar.CancelEvent(ctx, eventID)
	}
	uc.deps.record(source, "appointment_cancelled", ap, nil)

	return ap, nil
}
