package appointment

import (
	"context"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// CalendarSync mirrors appointments into an external calendar. Every
// method is best effort: failures are swallowed and reported as nil/false.
type CalendarSync interface {
	CreateEvent(ctx context.Context, ap *models.Appointment) *CalendarRefs
	UpdateEvent(ctx context.Context, eventID string, ap *models.Appointment) bool
	CancelEvent(ctx context.Context, eventID string) bool
}

// SlotGuard serializes check-then-write on one (doctor, date, start) key
// across processes. Acquire returns ErrSlotConflict when another request
// holds the key.
type SlotGuard interface {
	Acquire(ctx context.Context, doctorID, date, start string) (release func(), err error)
}

type NoopCalendar struct{}

func (NoopCalendar) CreateEvent(context.Context, *models.Appointment) *CalendarRefs { return nil }
func (NoopCalendar) UpdateEvent(context.Context, string, *models.Appointment) bool  { return false }
func (NoopCalendar) CancelEvent(context.Context, string) bool                       { return false }

type NoopGuard struct{}

func (NoopGuard) Acquire(context.Context, string, string, string) (func(), error) {
	return func() {}, nil
}
