package slot

import (
	"strings"
	"time"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/timezone"
)

const entitySlot = "slot"

type Deps struct {
	Repo  domain.Repository
	Audit *audit.Dispatcher

	DoctorID string
	Timezone string

	// Now is overridden in tests.
	Now func() time.Time
}

func (d Deps) normalized() Deps {
	if d.DoctorID == "" {
		d.DoctorID = "doctor1"
	}
	if d.Timezone == "" {
		d.Timezone = timezone.DefaultTimezone
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// today is the current clinic date as a midnight UTC value, the same
// shape domain.ParseDate returns.
func (d Deps) today() time.Time {
	local := d.Now().In(timezone.Location(d.Timezone))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Deps) doctor(raw string) string {
	if v := strings.TrimSpace(raw); v != "" {
		return v
	}
	return d.DoctorID
}

func (d Deps) record(action string, s *models.Slot, meta any) {
	ev := audit.Event{
		Source:   audit.SourceAPI,
		Action:   action,
		Entity:   entitySlot,
		Metadata: meta,
	}
	if s != nil {
		ev.EntityID = s.ID.String()
	}
	d.Audit.Dispatch(ev)
}
