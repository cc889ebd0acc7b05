package slot

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ======================================================
// List
// ======================================================

type ListSlotsInput struct {
	Date     string
	DoctorID string

	// AvailableOnly hides booked slots.
	AvailableOnly bool
}

type ListSlots struct {
	deps Deps
}

func NewListSlots(deps Deps) *ListSlots {
	return &ListSlots{deps: deps.normalized()}
}

// Execute lists slots with their appointment attached. Without a date
// only today and later are returned.
func (uc *ListSlots) Execute(ctx context.Context, in ListSlotsInput) ([]models.Slot, error) {
	f := domain.SlotFilter{
		DoctorID:        strings.TrimSpace(in.DoctorID),
		AvailableOnly:   in.AvailableOnly,
		WithAppointment: true,
	}

	if strings.TrimSpace(in.Date) != "" {
		d, err := domain.ParseDate(in.Date)
		if err != nil {
			return nil, err
		}
		f.Date = domain.FormatDate(d)
	} else {
		f.FromDate = domain.FormatDate(uc.deps.today())
	}

	return uc.deps.Repo.ListSlots(ctx, f)
}

// ======================================================
// Create
// ======================================================

type CreateSlotInput struct {
	Date      string
	StartTime string
	EndTime   string
	DoctorID  string
}

type CreateSlot struct {
	deps Deps
}

func NewCreateSlot(deps Deps) *CreateSlot {
	return &CreateSlot{deps: deps.normalized()}
}

func (uc *CreateSlot) Execute(ctx context.Context, in CreateSlotInput) (*models.Slot, error) {
	d, err := domain.ParseDate(in.Date)
	if err != nil {
		return nil, err
	}
	start, end, err := domain.Interval(in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	s := &models.Slot{
		DoctorID:  uc.deps.doctor(in.DoctorID),
		Date:      domain.FormatDate(d),
		StartTime: start,
		EndTime:   end,
	}

	err = uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		exists, err := tx.SlotExists(ctx, s.DoctorID, s.Date, s.StartTime)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrSlotExists
		}
		return tx.CreateSlot(ctx, s)
	})
	if err != nil {
		return nil, err
	}

	uc.deps.record("slot_created", s, nil)
	return s, nil
}

// ======================================================
// Bulk create
// ======================================================

type TimeRange struct {
	StartTime string
	EndTime   string
}

type BulkCreateInput struct {
	StartDate       string
	EndDate         string
	TimeSlots       []TimeRange
	DoctorID        string
	ExcludeWeekends bool
}

type BulkCreateSlots struct {
	deps Deps
}

func NewBulkCreateSlots(deps Deps) *BulkCreateSlots {
	return &BulkCreateSlots{deps: deps.normalized()}
}

// Execute creates every missing (date, start) combination in the range and
// returns how many were created. Existing slots are skipped.
func (uc *BulkCreateSlots) Execute(ctx context.Context, in BulkCreateInput) (int, error) {
	from, err := domain.ParseDate(in.StartDate)
	if err != nil {
		return 0, err
	}
	to, err := domain.ParseDate(in.EndDate)
	if err != nil {
		return 0, err
	}
	if to.Before(from) {
		return 0, domain.ErrInvalidRange
	}
	days := domain.DaysBetween(from, to)
	if len(days) > domain.MaxBulkDays {
		return 0, domain.ErrInvalidRange
	}

	if len(in.TimeSlots) == 0 {
		return 0, domain.ErrInvalidTime
	}
	ranges := make([]TimeRange, 0, len(in.TimeSlots))
	for _, tr := range in.TimeSlots {
		start, end, err := domain.Interval(tr.StartTime, tr.EndTime)
		if err != nil {
			return 0, err
		}
		ranges = append(ranges, TimeRange{StartTime: start, EndTime: end})
	}

	doctorID := uc.deps.doctor(in.DoctorID)
	created := 0

	err = uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		for _, day := range days {
			if in.ExcludeWeekends && isWeekend(day.Weekday()) {
				continue
			}
			date := domain.FormatDate(day)

			for _, tr := range ranges {
				exists, err := tx.SlotExists(ctx, doctorID, date, tr.StartTime)
				if err != nil {
					return err
				}
				if exists {
					continue
				}

				if err := tx.CreateSlot(ctx, &models.Slot{
					DoctorID:  doctorID,
					Date:      date,
					StartTime: tr.StartTime,
					EndTime:   tr.EndTime,
				}); err != nil {
					return err
				}
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		uc.deps.record("slots_bulk_created", nil, map[string]any{
			"doctorId":  doctorID,
			"startDate": domain.FormatDate(from),
			"endDate":   domain.FormatDate(to),
			"created":   created,
		})
	}
	return created, nil
}

func isWeekend(d time.Weekday) bool {
	return d == time.Saturday || d == time.Sunday
}

// ======================================================
// Delete
// ======================================================

type DeleteSlot struct {
	deps Deps
}

func NewDeleteSlot(deps Deps) *DeleteSlot {
	return &DeleteSlot{deps: deps.normalized()}
}

// Execute removes a free slot. Booked slots must be released through the
// appointment first.
func (uc *DeleteSlot) Execute(ctx context.Context, id uuid.UUID) error {
	var s *models.Slot

	err := uc.deps.Repo.WithinTx(ctx, func(tx domain.Repository) error {
		var err error
		s, err = tx.GetSlot(ctx, id)
		if err != nil {
			return err
		}
		if s.IsBooked {
			return domain.ErrSlotBooked
		}
		return tx.DeleteSlot(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.deps.record("slot_deleted", s, map[string]string{
		"date": s.Date,
		"time": s.TimeLabel(),
	})
	return nil
}
