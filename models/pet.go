package models

import (
	"time"

	"github.com/google/uuid"
)

// Pet is a patient of the clinic.
type Pet struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Species    string     `json:"species" db:"species"`
	BirthDate  *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	OwnerEmail string     `json:"owner_email" db:"owner_email"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Pet model
func (Pet) TableName() string {
	return "pets"
}

// NewPet creates a new Pet instance
func NewPet(name, species, ownerEmail string, birthDate *time.Time) *Pet {
	now := time.Now().UTC()
	return &Pet{
		ID:         uuid.New(),
		Name:       name,
		Species:    species,
		BirthDate:  birthDate,
		OwnerEmail: NormalizeEmail(ownerEmail),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
