package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/casaluna/guesthouse-backend/pkg/db/models"
	pkgerrors "github.com/casaluna/guesthouse-backend/pkg/errors"
)

// Input carries the user-supplied fields of a booking.
type Input struct {
	GuestName string
	CheckIn   time.Time
	CheckOut  time.Time
	Status    string
	Notes     string
}

// Service exposes booking management for the back office.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Booking, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*models.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, from, to *time.Time) ([]models.Booking, error)
}

type service struct {
	repo Repository
}

// NewService wires the booking service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "booking repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Booking, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		GuestName: input.GuestName,
		CheckIn:   input.CheckIn,
		CheckOut:  input.CheckOut,
		Status:    input.Status,
		Notes:     input.Notes,
	}
	if booking.Status == "" {
		booking.Status = "confirmed"
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating booking")
	}
	return booking, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*models.Booking, error) {
	if err := validate(input); err != nil {
		return nil, err
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	booking.GuestName = input.GuestName
	booking.CheckIn = input.CheckIn
	booking.CheckOut = input.CheckOut
	if input.Status != "" {
		booking.Status = input.Status
	}
	booking.Notes = input.Notes

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating booking")
	}
	return booking, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, from, to *time.Time) ([]models.Booking, error) {
	return s.repo.List(ctx, from, to)
}

func validate(input Input) error {
	if input.GuestName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "the guest name is required")
	}
	if input.CheckIn.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "the check-in date is required")
	}
	if input.CheckOut.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "the check-out date is required")
	}
	if !input.CheckOut.After(input.CheckIn) {
		return pkgerrors.New(pkgerrors.CodeValidation, "check-out must fall after check-in")
	}
	return nil
}
