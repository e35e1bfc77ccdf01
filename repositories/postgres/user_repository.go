package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
	"go.uber.org/zap"
)

// userColumns selects a user row together with its aggregated role names.
const userColumns = `
		SELECT u.id, u.email, u.name, u.password_hash, u.enabled, u.created_at, u.updated_at,
		       COALESCE(array_agg(r.role ORDER BY r.role) FILTER (WHERE r.role IS NOT NULL), '{}') AS roles
		FROM users u
		LEFT JOIN user_roles r ON r.user_id = u.id
`

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the user row and its roles in one transaction.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := runInTx(ctx, r.db, func(exec Executor) error {
		_, err := exec.ExecContext(ctx, `
			INSERT INTO users (id, email, name, password_hash, enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			user.ID,
			user.Email,
			user.Name,
			user.PasswordHash,
			user.Enabled,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return translateError(err)
		}

		if len(user.Roles) == 0 {
			return nil
		}
		_, err = exec.ExecContext(ctx, `
			INSERT INTO user_roles (user_id, role)
			SELECT $1, unnest($2::text[])
		`, user.ID, pq.Array(user.Roles))
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := userColumns + `
		WHERE u.id = $1
		GROUP BY u.id
	`

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found: %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := userColumns + `
		WHERE u.email = $1
		GROUP BY u.id
	`

	user, err := scanUser(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user not found for email: %s: %w", email, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// List retrieves users ordered by email
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	query := userColumns + `
		GROUP BY u.id
		ORDER BY u.email
		LIMIT $1 OFFSET $2
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// SetEnabled enables or disables a user
func (r *UserRepository) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `UPDATE users SET enabled = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`

	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, id, enabled)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %s: %w", id, repositories.ErrNotFound)
	}

	r.logger.Debug("user enabled flag updated", zap.String("id", id.String()), zap.Bool("enabled", enabled))
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Enabled,
		&user.CreatedAt,
		&user.UpdatedAt,
		pq.Array(&user.Roles),
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
