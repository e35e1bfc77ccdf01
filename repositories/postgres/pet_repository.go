package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
	"go.uber.org/zap"
)

// PetRepository implements the repositories.PetRepository interface
type PetRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPetRepository creates a new pet repository
func NewPetRepository(db *DB, logger *zap.Logger) repositories.PetRepository {
	return &PetRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new pet
func (r *PetRepository) Create(ctx context.Context, pet *models.Pet) error {
	query := `
		INSERT INTO pets (id, name, species, birth_date, owner_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		pet.ID,
		pet.Name,
		pet.Species,
		pet.BirthDate,
		pet.OwnerEmail,
		pet.CreatedAt,
		pet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pet: %w", err)
	}

	r.logger.Debug("pet created", zap.String("id", pet.ID.String()))
	return nil
}

// GetByID retrieves a pet by ID
func (r *PetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	query := `
		SELECT id, name, species, birth_date, owner_email, created_at, updated_at
		FROM pets
		WHERE id = $1
	`

	pet, err := scanPet(GetExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("pet not found: %s: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return pet, nil
}

// List retrieves pets ordered by name
func (r *PetRepository) List(ctx context.Context, limit, offset int) ([]*models.Pet, error) {
	query := `
		SELECT id, name, species, birth_date, owner_email, created_at, updated_at
		FROM pets
		ORDER BY name, id
		LIMIT $1 OFFSET $2
	`

	rows, err := GetExecutor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query pets: %w", err)
	}
	defer rows.Close()

	pets := []*models.Pet{}
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pet rows: %w", err)
	}
	return pets, nil
}

// Delete deletes a pet
func (r *PetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete pet: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pet not found: %s: %w", id, repositories.ErrNotFound)
	}

	r.logger.Debug("pet deleted", zap.String("id", id.String()))
	return nil
}

func scanPet(row rowScanner) (*models.Pet, error) {
	pet := &models.Pet{}
	var birth sql.NullTime
	err := row.Scan(
		&pet.ID,
		&pet.Name,
		&pet.Species,
		&birth,
		&pet.OwnerEmail,
		&pet.CreatedAt,
		&pet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if birth.Valid {
		pet.BirthDate = &birth.Time
	}
	return pet, nil
}
