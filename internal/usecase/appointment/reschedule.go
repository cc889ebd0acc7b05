package appointment

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type RescheduleAppointmentInput struct {
	Email       string
	CurrentDate string
	NewDate     string
	NewTime     string
}

type RescheduleResult struct {
	Appointment *models.Appointment
	FromDate    string
	FromTime    string
}

// RescheduleAppointment is the agent flow: locate by email + date, move to
// a free slot.
type RescheduleAppointment struct {
	deps Deps
}

func NewRescheduleAppointment(deps Deps) *RescheduleAppointment {
	return &RescheduleAppointment{deps: deps.normalized()}
}

func (uc *RescheduleAppointment) Execute(
	ctx context.Context,
	in RescheduleAppointmentInput,
) (*RescheduleResult, error) {

	email, err := uc.deps.email(in.Email)
	if err != nil {
		return nil, err
	}
	currentDate, err := parseDate(in.CurrentDate)
	if err != nil {
		return nil, err
	}
	newDate, err := parseDate(in.NewDate)
	if err != nil {
		return nil, err
	}
	newStart, err := domain.NormalizeClock(in.NewTime)
	if err != nil {
		return nil, err
	}

	// The guard key needs the appointment's doctor, so resolve it first.
	// The tx re-reads it under lock.
	found, err := uc.deps.Repo.FindActiveByEmailDate(ctx, email, currentDate)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrAppointmentNotFound
	}

	release, err := uc.deps.Guard.Acquire(ctx, found.DoctorID, newDate, newStart)
	if err != nil {
		return nil, err
	}
	defer release()

	var res RescheduleResult

	err = uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		ap, err := tx.FindActiveByEmailDate(ctx, email, currentDate)
		if err != nil {
			return err
		}
		if ap == nil {
			return domain.ErrAppointmentNotFound
		}

		slot, err := domain.CheckSlotAuthoritative(ctx, tx, ap.DoctorID, newDate, newStart)
		if err != nil {
			return err
		}

		res.FromDate = ap.AppointmentDate
		res.FromTime = ap.TimeLabel()

		if _, err := tx.ReleaseSlotsFor(ctx, ap.ID); err != nil {
			return err
		}

		domain.MoveTo(ap, slot)
		if err := tx.SaveAppointment(ctx, ap); err != nil {
			return err
		}

		res.Appointment = ap
		return tx.BookSlot(ctx, slot.ID, ap.ID)
	})
	if err != nil {
		return nil, err
	}

	uc.deps.syncEvent(ctx, res.Appointment)
	uc.deps.record(audit.SourceAgent, "appointment_rescheduled", res.Appointment, map[string]string{
		"from": res.FromDate + " " + res.FromTime,
		"to":   res.Appointment.AppointmentDate + " " + res.Appointment.TimeLabel(),
	})

	return &res, nil
}
