package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
	"go.uber.org/zap"
)

// Notifier queues a notification for a user.
type Notifier interface {
	Notify(recipient, subject, body string) error
}

// CreatePetRequest is the payload for registering a pet.
type CreatePetRequest struct {
	Name      string `json:"name" validate:"required,max=80"`
	Species   string `json:"species" validate:"required,max=40"`
	BirthDate string `json:"birth_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// PetService handles pet registration and lookup.
type PetService struct {
	pets     repositories.PetRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewPetService creates a new PetService. notifier may be nil.
func NewPetService(pets repositories.PetRepository, notifier Notifier, logger *zap.Logger) *PetService {
	return &PetService{pets: pets, notifier: notifier, logger: logger}
}

// List returns a page of pets.
func (s *PetService) List(ctx context.Context, limit, offset int) ([]*models.Pet, error) {
	pets, err := s.pets.List(ctx, limit, offset)
	if err != nil {
		return nil, ErrDatabaseError.WithCause(err)
	}
	return pets, nil
}

// Get returns one pet.
func (s *PetService) Get(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	pet, err := s.pets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, ErrDatabaseError.WithCause(err)
	}
	return pet, nil
}

// Create registers a pet owned by ownerEmail and notifies the owner.
func (s *PetService) Create(ctx context.Context, ownerEmail string, req CreatePetRequest) (*models.Pet, error) {
	name := strings.TrimSpace(req.Name)
	species := strings.TrimSpace(req.Species)
	if name == "" || species == "" {
		return nil, ErrInvalidPetData
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		d, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return nil, ErrInvalidPetData.WithDetail("birth_date", "must be YYYY-MM-DD")
		}
		if d.After(time.Now()) {
			return nil, ErrInvalidPetData.WithDetail("birth_date", "must not be in the future")
		}
		birthDate = &d
	}

	pet := models.NewPet(name, species, ownerEmail, birthDate)
	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, ErrDatabaseError.WithCause(err)
	}

	s.logger.Info("pet registered",
		zap.String("pet_id", pet.ID.String()),
		zap.String("owner", pet.OwnerEmail))

	if s.notifier != nil {
		body := fmt.Sprintf("%s the %s is now registered with the clinic.", pet.Name, pet.Species)
		if err := s.notifier.Notify(pet.OwnerEmail, "Pet registered", body); err != nil {
			s.logger.Warn("failed to queue notification", zap.String("owner", pet.OwnerEmail), zap.Error(err))
		}
	}

	return pet, nil
}

// Delete removes a pet.
func (s *PetService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.pets.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPetNotFound
		}
		return ErrDatabaseError.WithCause(err)
	}
	s.logger.Info("pet deleted", zap.String("pet_id", id.String()))
	return nil
}

// UserService exposes accounts to handlers.
type UserService struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// GetByEmail returns the account for email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, ErrDatabaseError.WithCause(err)
	}
	return user, nil
}

// List returns a page of accounts.
func (s *UserService) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, ErrDatabaseError.WithCause(err)
	}
	return users, nil
}

// NotificationService reads stored notifications.
type NotificationService struct {
	notifications repositories.NotificationRepository
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications repositories.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListForRecipient returns a page of email's notifications, newest first.
func (s *NotificationService) ListForRecipient(ctx context.Context, email string, limit, offset int) ([]*models.Notification, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	list, err := s.notifications.GetByRecipient(ctx, email, limit, offset)
	if err != nil {
		return nil, ErrDatabaseError.WithCause(err)
	}
	return list, nil
}
