package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
)

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) WithinTx(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// forUpdate takes row locks where the dialect has them. sqlite serializes
// writers on its own.
func (r *GormRepository) forUpdate(q *gorm.DB) *gorm.DB {
	if r.db.Dialector.Name() == "postgres" {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *GormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Create(ap).Error; err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

func (r *GormRepository) GetAppointment(
	ctx context.Context,
	id uuid.UUID,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.forUpdate(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&ap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &ap, nil
}

func (r *GormRepository) SaveAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	if err := r.db.WithContext(ctx).Save(ap).Error; err != nil {
		return fmt.Errorf("save appointment: %w", err)
	}
	return nil
}

func (r *GormRepository) DeleteAppointment(
	ctx context.Context,
	id uuid.UUID,
) error {
	res := r.db.WithContext(ctx).Delete(&models.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete appointment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrAppointmentNotFound
	}
	return nil
}

func (r *GormRepository) ListAppointments(
	ctx context.Context,
	f domain.AppointmentFilter,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if f.Email != "" {
		q = q.Where("user_email = ?", f.Email)
	}
	if f.Date != "" {
		q = q.Where("appointment_date = ?", f.Date)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.ExcludeCancelled {
		q = q.Where("status <> ?", string(domain.StatusCancelled))
	}

	var apps []models.Appointment
	if err := q.
		Order("appointment_date ASC").
		Order("start_time ASC").
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return apps, nil
}

func (r *GormRepository) FindActiveByEmailDate(
	ctx context.Context,
	email, date string,
) (*models.Appointment, error) {

	var apps []models.Appointment
	if err := r.forUpdate(r.db.WithContext(ctx)).
		Where(
			"user_email = ? AND appointment_date = ? AND status <> ?",
			email, date, string(domain.StatusCancelled),
		).
		Order("start_time ASC").
		Limit(1).
		Find(&apps).Error; err != nil {
		return nil, fmt.Errorf("find appointment: %w", err)
	}

	if len(apps) == 0 {
		return nil, nil
	}
	return &apps[0], nil
}

func (r *GormRepository) HasActiveAppointmentAt(
	ctx context.Context,
	doctorID, date, start string,
	exclude *uuid.UUID,
) (bool, error) {

	q := r.forUpdate(r.db.WithContext(ctx)).
		Select("id").
		Where(
			"doctor_id = ? AND appointment_date = ? AND start_time = ? AND status <> ?",
			doctorID, date, start, string(domain.StatusCancelled),
		)
	if exclude != nil {
		q = q.Where("id <> ?", *exclude)
	}

	var hits []models.Appointment
	if err := q.Limit(1).Find(&hits).Error; err != nil {
		return false, fmt.Errorf("check appointment conflict: %w", err)
	}
	return len(hits) > 0, nil
}

func (r *GormRepository) SetCalendarRefs(
	ctx context.Context,
	id uuid.UUID,
	refs domain.CalendarRefs,
) error {

	updates := map[string]any{}
	if refs.EventID != "" {
		updates["google_event_id"] = refs.EventID
	}
	if refs.Link != "" {
		updates["google_event_link"] = refs.Link
	}
	if refs.MeetLink != "" {
		updates["google_meet_link"] = refs.MeetLink
	}
	if len(updates) == 0 {
		return nil
	}

	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("store calendar refs: %w", err)
	}
	return nil
}

// Compile-time check
var _ domain.Repository = (*GormRepository)(nil)
