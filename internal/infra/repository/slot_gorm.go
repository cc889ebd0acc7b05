package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

// --------------------------------------------------
// Slot
// --------------------------------------------------

func (r *GormRepository) CreateSlot(
	ctx context.Context,
	slot *models.Slot,
) error {
	err := r.db.WithContext(ctx).Create(slot).Error
	if httperr.IsUniqueViolation(err) {
		return domain.ErrSlotExists
	}
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}
	return nil
}

func (r *GormRepository) GetSlot(
	ctx context.Context,
	id uuid.UUID,
) (*models.Slot, error) {

	var slot models.Slot
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return &slot, nil
}

func (r *GormRepository) DeleteSlot(
	ctx context.Context,
	id uuid.UUID,
) error {
	res := r.db.WithContext(ctx).Delete(&models.Slot{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

func (r *GormRepository) SlotExists(
	ctx context.Context,
	doctorID, date, start string,
) (bool, error) {

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("doctor_id = ? AND date = ? AND start_time = ?", doctorID, date, start).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check slot: %w", err)
	}
	return count > 0, nil
}

func (r *GormRepository) ListSlots(
	ctx context.Context,
	f domain.SlotFilter,
) ([]models.Slot, error) {

	q := r.db.WithContext(ctx).Model(&models.Slot{})

	if f.DoctorID != "" {
		q = q.Where("doctor_id = ?", f.DoctorID)
	}
	if f.Date != "" {
		q = q.Where("date = ?", f.Date)
	}
	if f.FromDate != "" {
		q = q.Where("date >= ?", f.FromDate)
	}
	if f.ToDate != "" {
		q = q.Where("date <= ?", f.ToDate)
	}
	if f.AvailableOnly {
		q = q.Where("is_booked = ?", false)
	}
	if f.BookedOnly {
		q = q.Where("is_booked = ?", true)
	}
	if f.WithAppointment {
		q = q.Preload("Appointment")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var slots []models.Slot
	if err := q.
		Order("date ASC").
		Order("start_time ASC").
		Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (r *GormRepository) FindFreeSlot(
	ctx context.Context,
	doctorID, date, start string,
) (*models.Slot, error) {

	var slots []models.Slot
	if err := r.forUpdate(r.db.WithContext(ctx)).
		Where(
			"doctor_id = ? AND date = ? AND start_time = ? AND is_booked = ?",
			doctorID, date, start, false,
		).
		Limit(1).
		Find(&slots).Error; err != nil {
		return nil, fmt.Errorf("find free slot: %w", err)
	}

	if len(slots) == 0 {
		return nil, nil
	}
	return &slots[0], nil
}

// BookSlot flips the slot only while it is still free; a lost race shows
// up as ErrSlotUnavailable.
func (r *GormRepository) BookSlot(
	ctx context.Context,
	slotID, appointmentID uuid.UUID,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ? AND is_booked = ?", slotID, false).
		Updates(map[string]any{
			"is_booked":      true,
			"appointment_id": appointmentID,
		})
	if res.Error != nil {
		return fmt.Errorf("book slot: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrSlotUnavailable
	}
	return nil
}

func (r *GormRepository) ReleaseSlotAt(
	ctx context.Context,
	doctorID, date, start string,
	appointmentID uuid.UUID,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where(
			"doctor_id = ? AND date = ? AND start_time = ? AND appointment_id = ?",
			doctorID, date, start, appointmentID,
		).
		Updates(map[string]any{
			"is_booked":      false,
			"appointment_id": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("release slot: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) ReleaseSlotsFor(
	ctx context.Context,
	appointmentID uuid.UUID,
) (int64, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("appointment_id = ?", appointmentID).
		Updates(map[string]any{
			"is_booked":      false,
			"appointment_id": nil,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("release slots: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *GormRepository) ReleaseSlot(
	ctx context.Context,
	slotID uuid.UUID,
) error {
	if err := r.db.WithContext(ctx).
		Model(&models.Slot{}).
		Where("id = ?", slotID).
		Updates(map[string]any{
			"is_booked":      false,
			"appointment_id": nil,
		}).Error; err != nil {
		return fmt.Errorf("release slot: %w", err)
	}
	return nil
}
