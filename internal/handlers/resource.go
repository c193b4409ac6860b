package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/medideal/records-api/internal/apperror"
	"github.com/medideal/records-api/internal/query"
	"github.com/medideal/records-api/internal/repository"
	"github.com/medideal/records-api/internal/response"
	"gorm.io/gorm"
)

// Entity is any model kind the generic handlers can serve
type Entity interface {
	ModelName() string
}

// Resource exposes the generic CRUD verbs for one entity kind.
// One instantiation per concrete type replaces per-entity controllers.
type Resource[T Entity] struct {
	store    repository.EntityStore[T]
	newPatch func() PatchRequest
}

// NewResource creates the handler set for one entity kind
func NewResource[T Entity](store repository.EntityStore[T], newPatch func() PatchRequest) *Resource[T] {
	return &Resource[T]{store: store, newPatch: newPatch}
}

func (h *Resource[T]) kind() string {
	var zero T
	return zero.ModelName()
}

// Create persists a new entity and echoes it back. Secret fields never
// serialize, so the echo carries no credentials.
func (h *Resource[T]) Create(w http.ResponseWriter, r *http.Request) {
	var entity T
	if err := json.NewDecoder(r.Body).Decode(&entity); err != nil {
		response.Error(w, apperror.BadRequest("Invalid request body"))
		return
	}

	if err := h.store.Create(r.Context(), &entity); err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusCreated, entity)
}

// GetAll lists entities through the query pipeline
func (h *Resource[T]) GetAll(w http.ResponseWriter, r *http.Request) {
	opts := query.Parse(r.URL.Query())

	entities, err := h.store.Find(r.Context(), opts)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Success(w, http.StatusOK, entities)
}

// GetOne retrieves an entity by id
func (h *Resource[T]) GetOne(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	entity, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		response.Error(w, h.translateNotFound(err))
		return
	}

	response.Success(w, http.StatusOK, entity)
}

// Update applies a partial update by id
func (h *Resource[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	patch := h.newPatch()
	if err := decodeBody(r, patch); err != nil {
		response.Error(w, err)
		return
	}

	updates := patch.Updates()
	if len(updates) == 0 {
		response.Error(w, apperror.BadRequest("Invalid request body"))
		return
	}

	entity, err := h.store.UpdateByID(r.Context(), id, updates)
	if err != nil {
		response.Error(w, h.translateNotFound(err))
		return
	}

	response.Success(w, http.StatusOK, entity)
}

// Delete removes an entity by id. Absent ids report not found rather
// than a blind success.
func (h *Resource[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.store.DeleteByID(r.Context(), id); err != nil {
		response.Error(w, h.translateNotFound(err))
		return
	}

	response.Success(w, http.StatusNoContent, nil)
}

func (h *Resource[T]) translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(fmt.Sprintf("There is no %s with this id", h.kind()))
	}
	return err
}

func urlParamID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid id")
	}
	return id, nil
}
