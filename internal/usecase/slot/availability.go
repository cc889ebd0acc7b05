package slot

import (
	"context"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// Availability answers "what is open" for the configured doctor. Every
// query goes to the store; nothing is cached.
type Availability struct {
	deps Deps
}

func NewAvailability(deps Deps) *Availability {
	return &Availability{deps: deps.normalized()}
}

type RangeResult struct {
	StartDate string
	EndDate   string
	Days      []domain.DayAvailability
}

// TotalSlots counts the open slots across every day.
func (r RangeResult) TotalSlots() int {
	n := 0
	for _, d := range r.Days {
		n += len(d.Slots)
	}
	return n
}

func (uc *Availability) open(ctx context.Context, f domain.SlotFilter) ([]models.Slot, error) {
	f.DoctorID = uc.deps.DoctorID
	f.AvailableOnly = true
	return uc.deps.Repo.ListSlots(ctx, f)
}

// Day lists the open slots on one date, by start time.
func (uc *Availability) Day(ctx context.Context, date string) (string, []domain.TimeSlot, error) {
	d, err := domain.ParseDate(date)
	if err != nil {
		return "", nil, err
	}
	day := domain.FormatDate(d)

	slots, err := uc.open(ctx, domain.SlotFilter{Date: day})
	if err != nil {
		return "", nil, err
	}

	out := make([]domain.TimeSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, domain.ToTimeSlot(s))
	}
	return day, out, nil
}

// Range groups open slots by date over an inclusive range of at most
// MaxRangeDays days.
func (uc *Availability) Range(ctx context.Context, startDate, endDate string) (*RangeResult, error) {
	from, err := domain.ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, domain.ErrInvalidRange
	}
	if len(domain.DaysBetween(from, to)) > domain.MaxRangeDays {
		return nil, domain.ErrInvalidRange
	}

	return uc.grouped(ctx, domain.FormatDate(from), domain.FormatDate(to))
}

// NextDays covers today plus the following days-1 days. Zero or negative
// means the default; anything above MaxRangeDays is clamped.
func (uc *Availability) NextDays(ctx context.Context, days int) (*RangeResult, error) {
	switch {
	case days <= 0:
		days = domain.DefaultNextDays
	case days > domain.MaxRangeDays:
		days = domain.MaxRangeDays
	}

	from := uc.deps.today()
	to := from.AddDate(0, 0, days-1)

	return uc.grouped(ctx, domain.FormatDate(from), domain.FormatDate(to))
}

func (uc *Availability) grouped(ctx context.Context, from, to string) (*RangeResult, error) {
	slots, err := uc.open(ctx, domain.SlotFilter{FromDate: from, ToDate: to})
	if err != nil {
		return nil, err
	}
	return &RangeResult{
		StartDate: from,
		EndDate:   to,
		Days:      domain.GroupByDate(slots),
	}, nil
}

// NextAvailable returns up to limit open slots on or after fromDate
// (today when empty).
func (uc *Availability) NextAvailable(
	ctx context.Context,
	fromDate string,
	limit int,
) (string, []domain.DatedSlot, error) {

	from := uc.deps.today()
	if fromDate != "" {
		d, err := domain.ParseDate(fromDate)
		if err != nil {
			return "", nil, err
		}
		from = d
	}

	switch {
	case limit <= 0:
		limit = domain.DefaultNextLimit
	case limit > domain.MaxNextLimit:
		limit = domain.MaxNextLimit
	}

	start := domain.FormatDate(from)
	slots, err := uc.open(ctx, domain.SlotFilter{FromDate: start, Limit: limit})
	if err != nil {
		return "", nil, err
	}

	out := make([]domain.DatedSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, domain.ToDatedSlot(s))
	}
	return start, out, nil
}
