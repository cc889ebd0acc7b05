package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ======================================================
// Conflict checks
// ======================================================
//
// Two sources of truth exist for "is this time taken". Agent flows trust
// the slot table; the direct API trusts the appointment table. They are
// kept as separate checks and callers pick one explicitly.

// CheckSlotAuthoritative requires an unbooked slot at the key and returns it.
func CheckSlotAuthoritative(
	ctx context.Context,
	repo Repository,
	doctorID, date, start string,
) (*models.Slot, error) {

	slot, err := repo.FindFreeSlot(ctx, doctorID, date, start)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrSlotUnavailable
	}
	return slot, nil
}

// CheckAppointmentAuthoritative fails when another non-cancelled
// appointment already sits at the key.
func CheckAppointmentAuthoritative(
	ctx context.Context,
	repo Repository,
	doctorID, date, start string,
	exclude *uuid.UUID,
) error {

	taken, err := repo.HasActiveAppointmentAt(ctx, doctorID, date, start, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrSlotConflict
	}
	return nil
}
