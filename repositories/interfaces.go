package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/upb/petclinic/models"
)

var (
	// ErrNotFound is wrapped by every lookup that matches no row
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is wrapped when a unique constraint rejects a write
	ErrDuplicate = errors.New("duplicate record")
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction
	// Automatically commits if function succeeds, rolls back on error
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// UserRepository handles user data operations.
// Emails are expected in normalized form (see models.NormalizeEmail).
type UserRepository interface {
	// Create inserts the user and its roles
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user with its roles by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByEmail retrieves a user with its roles by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// List retrieves users ordered by email with pagination
	List(ctx context.Context, limit, offset int) ([]*models.User, error)

	// SetEnabled enables or disables a user
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

// PetRepository handles pet data operations
type PetRepository interface {
	// Create creates a new pet
	Create(ctx context.Context, pet *models.Pet) error

	// GetByID retrieves a pet by ID
	GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)

	// List retrieves pets ordered by name with pagination
	List(ctx context.Context, limit, offset int) ([]*models.Pet, error)

	// Delete deletes a pet
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotificationRepository handles notification data operations
type NotificationRepository interface {
	// Create creates a new notification
	Create(ctx context.Context, n *models.Notification) error

	// GetByRecipient retrieves notifications for one recipient, newest first
	GetByRecipient(ctx context.Context, email string, limit, offset int) ([]*models.Notification, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	Users         UserRepository
	Pets          PetRepository
	Notifications NotificationRepository
}
