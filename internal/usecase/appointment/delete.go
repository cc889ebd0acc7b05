package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type DeleteAppointment struct {
	deps Deps
}

func NewDeleteAppointment(deps Deps) *DeleteAppointment {
	return &DeleteAppointment{deps: deps.normalized()}
}

// Execute hard-deletes the record after releasing its slot. The calendar
// event is removed once the delete has committed.
func (uc *DeleteAppointment) Execute(ctx context.Context, id uuid.UUID) error {
	var ap *models.Appointment

	err := uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointment(ctx, id)
		if err != nil {
			return err
		}

		if _, err := tx.ReleaseSlotAt(ctx, ap.DoctorID, ap.AppointmentDate, ap.StartTime, ap.ID); err != nil {
			return err
		}

		return tx.DeleteAppointment(ctx, ap.ID)
	})
	if err != nil {
		return err
	}

	if eventID := ap.EventID(); eventID != "" {
		uc.deps.Calendar.CancelEvent(ctx, eventID)
	}
	uc.deps.record(audit.SourceAPI, "appointment_deleted", ap, map[string]string{
		"email": ap.UserEmail,
		"date":  ap.AppointmentDate,
		"time":  ap.TimeLabel(),
	})

	return nil
}
