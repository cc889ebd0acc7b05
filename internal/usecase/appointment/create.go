package appointment

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	UserEmail string
	DoctorID  string
	Date      string
	StartTime string
	EndTime   string
	Note      string
}

// ======================================================
// USE CASE
// ======================================================

// CreateAppointment is the direct-API create. The appointment table is
// authoritative: any active appointment at the same start conflicts, and a
// matching slot is booked only if one exists.
type CreateAppointment struct {
	deps Deps
}

func NewCreateAppointment(deps Deps) *CreateAppointment {
	return &CreateAppointment{deps: deps.normalized()}
}

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	email, err := uc.deps.email(in.UserEmail)
	if err != nil {
		return nil, err
	}
	day, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}
	start, end, err := domain.Interval(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}
	text, err := checkNote(in.Note)
	if err != nil {
		return nil, err
	}

	doctorID := strings.TrimSpace(in.DoctorID)
	if doctorID == "" {
		doctorID = uc.deps.DoctorID
	}

	release, err := uc.deps.Guard.Acquire(ctx, doctorID, day, start)
	if err != nil {
		uc.deps.recordConflict(audit.SourceAPI, doctorID, day, start)
		return nil, err
	}
	defer release()

	ap := &models.Appointment{
		UserEmail:       email,
		DoctorID:        doctorID,
		AppointmentDate: day,
		StartTime:       start,
		EndTime:         end,
		Note:            text,
		Status:          string(domain.InitialStatus()),
	}

	err = uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		if err := domain.CheckAppointmentAuthoritative(ctx, tx, doctorID, day, start, nil); err != nil {
			return err
		}

		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		slot, err := tx.FindFreeSlot(ctx, doctorID, day, start)
		if err != nil {
			return err
		}
		if slot == nil {
			return nil
		}
		return tx.BookSlot(ctx, slot.ID, ap.ID)
	})
	if err != nil {
		if httperr.IsBusiness(err, domain.CodeSlotConflict) {
			uc.deps.recordConflict(audit.SourceAPI, doctorID, day, start)
		}
		return nil, err
	}

	uc.deps.attachEvent(ctx, ap)
	uc.deps.record(audit.SourceAPI, "appointment_created", ap, nil)

	return ap, nil
}
