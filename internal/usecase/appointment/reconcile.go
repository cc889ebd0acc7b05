package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/clinic-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// ReportUploader stores a finished reconcile report.
type ReportUploader interface {
	Upload(ctx context.Context, key string, body []byte) (string, error)
}

type SlotFix struct {
	SlotID        uuid.UUID  `json:"slotId"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	Date          string     `json:"date"`
	StartTime     string     `json:"startTime"`
	Reason        string     `json:"reason"`
}

type ReconcileReport struct {
	StartedAt time.Time `json:"startedAt"`
	DryRun    bool      `json:"dryRun"`

	Released []SlotFix `json:"released"`
	Booked   []SlotFix `json:"booked"`

	// Unslotted lists active appointments with no slot to attach to.
	Unslotted []uuid.UUID `json:"unslotted"`

	Location string `json:"location,omitempty"`
}

func (r *ReconcileReport) Changes() int {
	return len(r.Released) + len(r.Booked)
}

// Reconcile repairs divergence between slots and appointments left behind
// by partial failures:
//   - booked slots whose appointment is missing, cancelled, or elsewhere
//     are released
//   - active appointments holding no slot get their free slot booked
type Reconcile struct {
	deps     Deps
	uploader ReportUploader
	now      func() time.Time
}

func NewReconcile(deps Deps, uploader ReportUploader) *Reconcile {
	return &Reconcile{
		deps:     deps.normalized(),
		uploader: uploader,
		now:      time.Now,
	}
}

func (uc *Reconcile) Execute(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	report := &ReconcileReport{
		StartedAt: uc.now().UTC(),
		DryRun:    dryRun,
		Released:  []SlotFix{},
		Booked:    []SlotFix{},
		Unslotted: []uuid.UUID{},
	}

	run := func(repo domain.Repository) error {
		return uc.pass(ctx, repo, report, dryRun)
	}

	var err error
	if dryRun {
		err = run(uc.deps.Repo)
	} else {
		err = uc.deps.Repo.WithinTx(ctx, run)
	}
	if err != nil {
		return nil, err
	}

	if uc.uploader != nil {
		body, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
		key := fmt.Sprintf("reconcile/%s.json", report.StartedAt.Format("20060102T150405Z"))
		loc, err := uc.uploader.Upload(ctx, key, body)
		if err != nil {
			uc.deps.Log.Warn().Err(err).Msg("reconcile report upload failed")
		} else {
			report.Location = loc
		}
	}

	if !dryRun && report.Changes() > 0 {
		uc.deps.Audit.Dispatch(audit.Event{
			Source: audit.SourceReconcile,
			Action: "slots_reconciled",
			Entity: "slot",
			Metadata: map[string]int{
				"released": len(report.Released),
				"booked":   len(report.Booked),
			},
		})
	}

	return report, nil
}

func (uc *Reconcile) pass(
	ctx context.Context,
	repo domain.Repository,
	report *ReconcileReport,
	dryRun bool,
) error {

	booked, err := repo.ListSlots(ctx, domain.SlotFilter{BookedOnly: true})
	if err != nil {
		return err
	}

	active, err := repo.ListAppointments(ctx, domain.AppointmentFilter{ExcludeCancelled: true})
	if err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*models.Appointment, len(active))
	for i := range active {
		byID[active[i].ID] = &active[i]
	}

	holding := make(map[uuid.UUID]bool)

	// --------------------------------------------------
	// booked slots that no active appointment justifies
	// --------------------------------------------------
	for _, slot := range booked {
		reason := ""
		switch {
		case slot.AppointmentID == nil:
			reason = "no_back_reference"
		case byID[*slot.AppointmentID] == nil:
			reason = "appointment_missing_or_cancelled"
		default:
			ap := byID[*slot.AppointmentID]
			if ap.DoctorID != slot.DoctorID || ap.AppointmentDate != slot.Date || ap.StartTime != slot.StartTime {
				reason = "appointment_moved"
			} else if holding[ap.ID] {
				reason = "duplicate_hold"
			}
		}

		if reason == "" {
			holding[*slot.AppointmentID] = true
			continue
		}

		report.Released = append(report.Released, SlotFix{
			SlotID:        slot.ID,
			AppointmentID: slot.AppointmentID,
			Date:          slot.Date,
			StartTime:     slot.StartTime,
			Reason:        reason,
		})
		if !dryRun {
			if err := repo.ReleaseSlot(ctx, slot.ID); err != nil {
				return err
			}
		}
	}

	// --------------------------------------------------
	// active appointments that hold nothing
	// --------------------------------------------------
	for _, ap := range active {
		if holding[ap.ID] {
			continue
		}

		slot, err := repo.FindFreeSlot(ctx, ap.DoctorID, ap.AppointmentDate, ap.StartTime)
		if err != nil {
			return err
		}
		if slot == nil {
			report.Unslotted = append(report.Unslotted, ap.ID)
			continue
		}

		id := ap.ID
		report.Booked = append(report.Booked, SlotFix{
			SlotID:        slot.ID,
			AppointmentID: &id,
			Date:          slot.Date,
			StartTime:     slot.StartTime,
			Reason:        "active_appointment_without_slot",
		})
		if !dryRun {
			if err := repo.BookSlot(ctx, slot.ID, ap.ID); err != nil {
				return err
			}
		}
	}

	return nil
}
