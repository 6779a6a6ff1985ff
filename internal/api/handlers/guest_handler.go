package handlers

import (
	"context"
	"net/http"

	"github.com/shelterbeds/matcheckin/internal/domain/entities"
)

// GuestMergeService merges duplicate guests
type GuestMergeService interface {
	Merge(ctx context.Context, facilityID, toGuestID, fromGuestID string) (*entities.Guest, error)
}

// GuestHandler handles guest consolidation requests
type GuestHandler struct {
	service GuestMergeService
}

// NewGuestHandler creates a new guest handler
func NewGuestHandler(service GuestMergeService) *GuestHandler {
	return &GuestHandler{service: service}
}

// Merge handles POST /api/facilities/{facilityId}/guests/{toGuestId}/merge/{fromGuestId}
func (h *GuestHandler) Merge(w http.ResponseWriter, r *http.Request) {
	guest, err := h.service.Merge(r.Context(), r.PathValue("facilityId"), r.PathValue("toGuestId"), r.PathValue("fromGuestId"))
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, guest)
}
