package appointment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/clinic-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/clinic-scheduler/internal/models"
	"github.com/BruksfildServices01/clinic-scheduler/internal/validators"
)

type ListAppointmentsInput struct {
	Email            string
	Date             string
	Status           string
	ExcludeCancelled bool
}

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

func (uc *ListAppointments) Execute(
	ctx context.Context,
	in ListAppointmentsInput,
) ([]models.Appointment, error) {

	f := domain.AppointmentFilter{
		Email:            validators.NormalizeEmail(in.Email),
		ExcludeCancelled: in.ExcludeCancelled,
	}

	if strings.TrimSpace(in.Date) != "" {
		d, err := parseDate(in.Date)
		if err != nil {
			return nil, err
		}
		f.Date = d
	}

	if strings.TrimSpace(in.Status) != "" {
		s, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		f.Status = s
	}

	return uc.repo.ListAppointments(ctx, f)
}

type GetAppointment struct {
	repo domain.Repository
}

func NewGetAppointment(repo domain.Repository) *GetAppointment {
	return &GetAppointment{repo: repo}
}

func (uc *GetAppointment) Execute(ctx context.Context, id uuid.UUID) (*models.Appointment, error) {
	return uc.repo.GetAppointment(ctx, id)
}
