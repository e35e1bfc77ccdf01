package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
)

var (
	// ErrPrincipalNotFound is returned when no identity matches the subject
	ErrPrincipalNotFound = errors.New("principal not found")

	// ErrPrincipalDisabled is returned when the identity exists but is disabled
	ErrPrincipalDisabled = errors.New("principal disabled")
)

// Resolver maps a subject to its current principal.
type Resolver interface {
	Resolve(ctx context.Context, subject string) (*Principal, error)
}

// IdentityStore is the read side of the identity store.
// FindBySubject wraps ErrPrincipalNotFound when nothing matches.
type IdentityStore interface {
	FindBySubject(ctx context.Context, subject string) (*Principal, error)
}

// StoreResolver reads the principal from the store on every call, so
// role changes are visible to the next request.
type StoreResolver struct {
	store IdentityStore
}

// NewStoreResolver creates a resolver over store
func NewStoreResolver(store IdentityStore) *StoreResolver {
	return &StoreResolver{store: store}
}

// Resolve returns the enabled principal for subject. A disabled principal
// is returned together with ErrPrincipalDisabled.
func (r *StoreResolver) Resolve(ctx context.Context, subject string) (*Principal, error) {
	p, err := r.store.FindBySubject(ctx, models.NormalizeEmail(subject))
	if err != nil {
		if errors.Is(err, ErrPrincipalNotFound) {
			return nil, ErrPrincipalNotFound
		}
		return nil, fmt.Errorf("resolve principal: %w", err)
	}
	if p == nil {
		return nil, ErrPrincipalNotFound
	}
	if !p.Enabled {
		return p, ErrPrincipalDisabled
	}
	return p, nil
}

// UserStore adapts a UserRepository to IdentityStore.
type UserStore struct {
	users repositories.UserRepository
}

// NewUserStore creates an IdentityStore backed by users
func NewUserStore(users repositories.UserRepository) *UserStore {
	return &UserStore{users: users}
}

// FindBySubject looks the user up by email.
func (s *UserStore) FindBySubject(ctx context.Context, subject string) (*Principal, error) {
	u, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %v", ErrPrincipalNotFound, err)
		}
		return nil, err
	}
	return &Principal{
		Subject:      u.Email,
		PasswordHash: u.PasswordHash,
		Roles:        append([]string(nil), u.Roles...),
		Enabled:      u.Enabled,
	}, nil
}
