package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if u := args.Get(0); u != nil {
		return u.([]*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	return m.Called(ctx, id, enabled).Error(0)
}

// MockPetRepository is a mock implementation of PetRepository
type MockPetRepository struct {
	mock.Mock
}

func (m *MockPetRepository) Create(ctx context.Context, pet *models.Pet) error {
	return m.Called(ctx, pet).Error(0)
}

func (m *MockPetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Pet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPetRepository) List(ctx context.Context, limit, offset int) ([]*models.Pet, error) {
	args := m.Called(ctx, limit, offset)
	if p := args.Get(0); p != nil {
		return p.([]*models.Pet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) GetByRecipient(ctx context.Context, email string, limit, offset int) ([]*models.Notification, error) {
	args := m.Called(ctx, email, limit, offset)
	if n := args.Get(0); n != nil {
		return n.([]*models.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

// passthroughTxManager runs the function without a real transaction
type passthroughTxManager struct {
	calls int
}

func (m *passthroughTxManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return nil, nil
}

func (m *passthroughTxManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	m.calls++
	return fn(ctx, nil)
}

// MockResolver is a mock implementation of auth.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, subject string) (*auth.Principal, error) {
	args := m.Called(ctx, subject)
	if p := args.Get(0); p != nil {
		return p.(*auth.Principal), args.Error(1)
	}
	return nil, args.Error(1)
}

// recordingNotifier keeps every queued notification
type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (n *recordingNotifier) Notify(recipient, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recipient+"|"+subject)
	return n.err
}
