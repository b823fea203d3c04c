package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bcg0006/plockly-core/internal/application/ports"
	"github.com/bcg0006/plockly-core/internal/domain"
	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
	"github.com/bcg0006/plockly-core/internal/infrastructure/http/middleware"
)

// ItemsHandler serves /items/*. Every operation is scoped to the
// authenticated owner; a foreign item id reads as not found.
type ItemsHandler struct {
	items    ports.ItemRepository
	validate *validator.Validate
	log      zerolog.Logger
}

func NewItemsHandler(items ports.ItemRepository, log zerolog.Logger) *ItemsHandler {
	return &ItemsHandler{
		items:    items,
		validate: newValidator(),
		log:      log,
	}
}

type itemResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newItemResponse(i *domain.Item) itemResponse {
	return itemResponse{
		ID:          i.ID.String(),
		Title:       i.Title,
		Description: i.Description,
		Owner:       i.OwnerID.String(),
		IsActive:    i.IsActive,
		CreatedAt:   i.CreatedAt,
	}
}

func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	items, err := h.items.ListByOwner(r.Context(), owner)
	if err != nil {
		h.log.Error().Err(err).Msg("list items")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newItemResponse(item))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": out})
}

func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	var body struct {
		Title       string `json:"title" validate:"required,max=200"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeFieldErrors(w, fieldErrors(err))
		return
	}
	// Owner comes from the token, never from the payload.
	item := &domain.Item{
		ID:          domain.NewItemID(uuid.New()),
		Title:       body.Title,
		Description: body.Description,
		OwnerID:     owner,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if err := h.items.Create(r.Context(), item); err != nil {
		h.log.Error().Err(err).Msg("create item")
		writeErr(w, http.StatusInternalServerError, "", "internal error")
		return
	}
	AuditLog(h.log, r, "item.create", owner.String(), true, "")
	writeJSON(w, http.StatusCreated, newItemResponse(item))
}

func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDFromURL(w, r)
	if !ok {
		return
	}
	item, err := h.items.GetByID(r.Context(), owner, itemID)
	if err != nil {
		h.respondItemErr(w, err, "get item")
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(item))
}

func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDFromURL(w, r)
	if !ok {
		return
	}
	var body struct {
		Title       *string `json:"title" validate:"omitempty,max=200"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, "", "invalid body")
		return
	}
	if r.Method == http.MethodPut && body.Title == nil {
		writeFieldErrors(w, map[string][]string{"title": {"This field is required."}})
		return
	}
	// title is required at creation; an update must not blank it either.
	if body.Title != nil && *body.Title == "" {
		writeFieldErrors(w, map[string][]string{"title": {"This field may not be blank."}})
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		writeFieldErrors(w, fieldErrors(err))
		return
	}
	item, err := h.items.Update(r.Context(), owner, itemID, ports.ItemUpdate{
		Title:       body.Title,
		Description: body.Description,
	})
	if err != nil {
		h.respondItemErr(w, err, "update item")
		return
	}
	AuditLog(h.log, r, "item.update", owner.String(), true, "")
	writeJSON(w, http.StatusOK, newItemResponse(item))
}

func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDFromURL(w, r)
	if !ok {
		return
	}
	if err := h.items.Delete(r.Context(), owner, itemID); err != nil {
		h.respondItemErr(w, err, "delete item")
		return
	}
	AuditLog(h.log, r, "item.delete", owner.String(), true, "")
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemsHandler) respondItemErr(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, domerrors.ErrItemNotFound) {
		writeErr(w, http.StatusNotFound, "", "item not found")
		return
	}
	h.log.Error().Err(err).Msg(op)
	writeErr(w, http.StatusInternalServerError, "", "internal error")
}

func ownerFromContext(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	userIDStr := middleware.UserIDFromContext(r.Context())
	if userIDStr == "" {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return domain.UserID{}, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		writeErr(w, http.StatusUnauthorized, "", "unauthorized")
		return domain.UserID{}, false
	}
	return domain.NewUserID(userID), true
}

// itemIDFromURL parses {id}; a non-uuid reads as not found so item ids
// stay unguessable.
func itemIDFromURL(w http.ResponseWriter, r *http.Request) (domain.ItemID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, http.StatusNotFound, "", "item not found")
		return domain.ItemID{}, false
	}
	return domain.NewItemID(id), true
}
