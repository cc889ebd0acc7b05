package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type SlotFilter struct {
	DoctorID string

	// Date is an exact match; FromDate/ToDate bound a range, inclusive.
	Date     string
	FromDate string
	ToDate   string

	AvailableOnly bool
	BookedOnly    bool

	WithAppointment bool
	Limit           int
}

type AppointmentFilter struct {
	Email            string
	Date             string
	Status           Status
	ExcludeCancelled bool
}

type CalendarRefs struct {
	EventID  string
	Link     string
	MeetLink string
}

type Repository interface {
	// WithinTx runs fn against a repository bound to one transaction.
	WithinTx(ctx context.Context, fn func(tx Repository) error) error

	// -------- Slot --------
	CreateSlot(ctx context.Context, slot *models.Slot) error
	GetSlot(ctx context.Context, id uuid.UUID) (*models.Slot, error)
	DeleteSlot(ctx context.Context, id uuid.UUID) error
	SlotExists(ctx context.Context, doctorID, date, start string) (bool, error)
	ListSlots(ctx context.Context, f SlotFilter) ([]models.Slot, error)

	// FindFreeSlot returns nil when no unbooked slot sits at the key.
	FindFreeSlot(ctx context.Context, doctorID, date, start string) (*models.Slot, error)
	BookSlot(ctx context.Context, slotID, appointmentID uuid.UUID) error
	ReleaseSlotAt(ctx context.Context, doctorID, date, start string, appointmentID uuid.UUID) (int64, error)
	ReleaseSlotsFor(ctx context.Context, appointmentID uuid.UUID) (int64, error)
	ReleaseSlot(ctx context.Context, slotID uuid.UUID) error

	// -------- Appointment --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (*models.Appointment, error)
	SaveAppointment(ctx context.Context, ap *models.Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)

	// FindActiveByEmailDate returns nil when nothing matches.
	FindActiveByEmailDate(ctx context.Context, email, date string) (*models.Appointment, error)
	HasActiveAppointmentAt(ctx context.Context, doctorID, date, start string, exclude *uuid.UUID) (bool, error)
	SetCalendarRefs(ctx context.Context, id uuid.UUID, refs CalendarRefs) error
}
