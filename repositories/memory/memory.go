// Package memory implements the repositories in process memory. It backs
// tests that need real storage semantics without a postgres server.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
)

// Store holds every table. The zero value is not usable; call New.
type Store struct {
	mu            sync.RWMutex
	users         map[uuid.UUID]*models.User
	pets          map[uuid.UUID]*models.Pet
	notifications []*models.Notification
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users: make(map[uuid.UUID]*models.User),
		pets:  make(map[uuid.UUID]*models.Pet),
	}
}

// Repositories returns repositories backed by s.
func (s *Store) Repositories() *repositories.Repositories {
	return &repositories.Repositories{
		Users:         (*userRepo)(s),
		Pets:          (*petRepo)(s),
		Notifications: (*notificationRepo)(s),
	}
}

// TransactionManager returns a manager whose transactions run directly
// against s. Rollback does not undo writes.
func (s *Store) TransactionManager() repositories.TransactionManager {
	return txManager{}
}

func copyUser(u *models.User) *models.User {
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user %s: %w", user.Email, repositories.ErrDuplicate)
		}
	}
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	return copyUser(u), nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, repositories.ErrNotFound)
}

func (r *userRepo) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	r.mu.RLock()
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, copyUser(u))
	}
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return page(all, limit, offset), nil
}

func (r *userRepo) SetEnabled(_ context.Context, id uuid.UUID, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, repositories.ErrNotFound)
	}
	u.Enabled = enabled
	return nil
}

type petRepo Store

func (r *petRepo) Create(_ context.Context, pet *models.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *pet
	r.pets[pet.ID] = &c
	return nil
}

func (r *petRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pets[id]
	if !ok {
		return nil, fmt.Errorf("pet %s: %w", id, repositories.ErrNotFound)
	}
	c := *p
	return &c, nil
}

func (r *petRepo) List(_ context.Context, limit, offset int) ([]*models.Pet, error) {
	r.mu.RLock()
	all := make([]*models.Pet, 0, len(r.pets))
	for _, p := range r.pets {
		c := *p
		all = append(all, &c)
	}
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return page(all, limit, offset), nil
}

func (r *petRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[id]; !ok {
		return fmt.Errorf("pet %s: %w", id, repositories.ErrNotFound)
	}
	delete(r.pets, id)
	return nil
}

type notificationRepo Store

func (r *notificationRepo) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *n
	r.notifications = append(r.notifications, &c)
	return nil
}

func (r *notificationRepo) GetByRecipient(_ context.Context, email string, limit, offset int) ([]*models.Notification, error) {
	r.mu.RLock()
	var out []*models.Notification
	for i := len(r.notifications) - 1; i >= 0; i-- {
		if n := r.notifications[i]; n.RecipientEmail == email {
			c := *n
			out = append(out, &c)
		}
	}
	r.mu.RUnlock()
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type txManager struct{}

func (txManager) Begin(ctx context.Context) (repositories.Transaction, error) {
	return tx{ctx: ctx}, nil
}

func (txManager) InTransaction(ctx context.Context, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	return fn(ctx, tx{ctx: ctx})
}

type tx struct {
	ctx context.Context
}

func (tx) Commit() error              { return nil }
func (tx) Rollback() error            { return nil }
func (t tx) Context() context.Context { return t.ctx }
