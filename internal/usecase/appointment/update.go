package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// UpdateAppointmentInput is a partial update; nil fields are left alone.
type UpdateAppointmentInput struct {
	ID uuid.UUID

	UserEmail *string
	Date      *string
	StartTime *string
	EndTime   *string
	Note      *string
	Status    *string
}

type UpdateAppointment struct {
	deps Deps
}

func NewUpdateAppointment(deps Deps) *UpdateAppointment {
	return &UpdateAppointment{deps: deps.normalized()}
}

type updatePatch struct {
	email  *string
	date   *string
	start  *string
	end    *string
	note   *string
	status *domain.Status
}

func (uc *UpdateAppointment) parse(in UpdateAppointmentInput) (updatePatch, error) {
	var p updatePatch

	if in.UserEmail != nil {
		v, err := uc.deps.email(*in.UserEmail)
		if err != nil {
			return p, err
		}
		p.email = &v
	}
	if in.Date != nil {
		v, err := parseDate(*in.Date)
		if err != nil {
			return p, err
		}
		p.date = &v
	}
	if in.StartTime != nil {
		v, err := domain.NormalizeClock(*in.StartTime)
		if err != nil {
			return p, err
		}
		p.start = &v
	}
	if in.EndTime != nil {
		v, err := domain.NormalizeClock(*in.EndTime)
		if err != nil {
			return p, err
		}
		p.end = &v
	}
	if in.Note != nil {
		v, err := checkNote(*in.Note)
		if err != nil {
			return p, err
		}
		p.note = &v
	}
	if in.Status != nil {
		v, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return p, err
		}
		p.status = &v
	}

	return p, nil
}

func coalesce(v *string, fallback string) string {
	if v != nil {
		return *v
	}
	return fallback
}

func (uc *UpdateAppointment) Execute(
	ctx context.Context,
	in UpdateAppointmentInput,
) (*models.Appointment, error) {

	p, err := uc.parse(in)
	if err != nil {
		return nil, err
	}

	current, err := uc.deps.Repo.GetAppointment(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	moving := p.date != nil || p.start != nil
	if moving {
		release, err := uc.deps.Guard.Acquire(
			ctx,
			current.DoctorID,
			coalesce(p.date, current.AppointmentDate),
			coalesce(p.start, current.StartTime),
		)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	var ap *models.Appointment

	err = uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		ap, err = tx.GetAppointment(ctx, in.ID)
		if err != nil {
			return err
		}

		was := domain.Status(ap.Status)
		target := was
		if p.status != nil {
			target = *p.status
		}

		oldDate, oldStart := ap.AppointmentDate, ap.StartTime
		newDate := coalesce(p.date, oldDate)
		newStart := coalesce(p.start, oldStart)

		// A cancelled appointment brought back to life needs its slot again.
		reviving := !was.IsActive() && target.IsActive()
		needsSlot := (moving || reviving) && target.IsActive()

		// 1. the new position must not collide with another appointment
		if needsSlot {
			if err := domain.CheckAppointmentAuthoritative(ctx, tx, ap.DoctorID, newDate, newStart, &ap.ID); err != nil {
				return err
			}
		}

		// 2. let go of the old slot
		cancelling := p.status != nil && target == domain.StatusCancelled
		if (moving || cancelling) && was.IsActive() {
			if _, err := tx.ReleaseSlotAt(ctx, ap.DoctorID, oldDate, oldStart, ap.ID); err != nil {
				return err
			}
		}

		// 3. the slot to occupy, looked up after the old one is free so an
		// unchanged position finds its own slot again
		var slot *models.Slot
		if needsSlot {
			slot, err = tx.FindFreeSlot(ctx, ap.DoctorID, newDate, newStart)
			if err != nil {
				return err
			}
		}

		// 4. apply; without an explicit end the appointment takes the slot's
		if p.email != nil {
			ap.UserEmail = *p.email
		}
		ap.AppointmentDate = newDate
		ap.StartTime = newStart
		switch {
		case p.end != nil:
			ap.EndTime = *p.end
		case slot != nil:
			ap.EndTime = slot.EndTime
		}
		if p.note != nil {
			ap.Note = *p.note
		}
		if ap.EndTime <= ap.StartTime {
			return domain.ErrInvalidTime
		}

		switch {
		case p.status != nil:
			ap.Status = string(*p.status)
		case moving && was.IsActive() && (newDate != oldDate || newStart != oldStart):
			ap.Status = string(domain.StatusRescheduled)
		}

		if err := tx.SaveAppointment(ctx, ap); err != nil {
			return err
		}

		if slot == nil {
			return nil
		}
		return tx.BookSlot(ctx, slot.ID, ap.ID)
	})
	if err != nil {
		if httperr.IsBusiness(err, domain.CodeSlotConflict) {
			uc.deps.recordConflict(audit.SourceAPI, current.DoctorID,
				coalesce(p.date, current.AppointmentDate), coalesce(p.start, current.StartTime))
		}
		return nil, err
	}

	// 5. calendar, after commit
	uc.deps.syncEvent(ctx, ap)
	uc.deps.record(audit.SourceAPI, "appointment_updated", ap, map[string]string{
		"from": current.AppointmentDate + " " + current.StartTime,
		"to":   ap.AppointmentDate + " " + ap.StartTime,
	})

	return ap, nil
}
