package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/upb/petclinic/auth"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/services"
	"github.com/upb/petclinic/utils"
	"go.uber.org/zap"
)

// PetService is what PetHandler needs from the pet service
type PetService interface {
	List(ctx context.Context, limit, offset int) ([]*models.Pet, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	Create(ctx context.Context, ownerEmail string, req services.CreatePetRequest) (*models.Pet, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PetHandler handles pet HTTP requests
type PetHandler struct {
	pets   PetService
	logger *zap.Logger
}

// NewPetHandler creates a new PetHandler
func NewPetHandler(pets PetService, logger *zap.Logger) *PetHandler {
	return &PetHandler{pets: pets, logger: logger}
}

// HandleList handles GET /api/v1/pets
func (h *PetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, offset := utils.ParsePagination(r)

	pets, err := h.pets.List(r.Context(), limit, offset)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}
	if pets == nil {
		pets = []*models.Pet{}
	}

	_ = utils.WriteOK(w, Page{Items: pets, Limit: limit, Offset: offset})
}

// HandleGet handles GET /api/v1/pets/{id}
func (h *PetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	pet, err := h.pets.Get(r.Context(), id)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteOK(w, pet)
}

// HandleCreate handles POST /api/v1/pets. The caller becomes the owner.
func (h *PetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	if !ac.Authenticated() {
		_ = utils.WriteAccessDenied(w)
		return
	}

	var req services.CreatePetRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	pet, err := h.pets.Create(r.Context(), ac.Subject(), req)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	_ = utils.WriteCreated(w, pet)
}

// HandleDelete handles DELETE /api/v1/pets/{id}
func (h *PetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if err := h.pets.Delete(r.Context(), id); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	utils.WriteNoContent(w)
}
