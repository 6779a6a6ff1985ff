package handlers

import (
	"context"
	"net/http"

	"github.com/shelterbeds/matcheckin/internal/application/services"
	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

// CheckinService is the lifecycle service the handler drives
type CheckinService interface {
	Generate(ctx context.Context, facilityID string, date entities.Date, templateID string) ([]*entities.Checkin, error)
	List(ctx context.Context, facilityID string, date entities.Date) ([]*entities.Checkin, error)
	Get(ctx context.Context, facilityID, checkinID string) (*entities.Checkin, error)
	DeleteNight(ctx context.Context, facilityID string, date entities.Date) (int64, error)
	Assign(ctx context.Context, facilityID, checkinID string, payload services.AssignPayload) (*entities.Checkin, error)
	Deassign(ctx context.Context, facilityID, checkinID string) (*entities.Checkin, error)
	Reassign(ctx context.Context, facilityID, sourceID string, payload services.ReassignPayload) (*entities.Checkin, error)
	Update(ctx context.Context, facilityID, checkinID string, details entities.Details) (*entities.Checkin, error)
}

// CheckinHandler handles checkin lifecycle requests
type CheckinHandler struct {
	service CheckinService
}

// NewCheckinHandler creates a new checkin handler
func NewCheckinHandler(service CheckinService) *CheckinHandler {
	return &CheckinHandler{service: service}
}

type generateRequest struct {
	CheckinDate entities.Date `json:"checkin_date"`
	TemplateID  string        `json:"template_id"`
}

func dateParam(r *http.Request) (entities.Date, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return entities.Date{}, apperrors.NewBadRequestError("date query parameter is required").WithField("date")
	}
	date, err := entities.ParseDate(raw)
	if err != nil {
		return entities.Date{}, apperrors.NewBadRequestError(err.Error()).WithField("date")
	}
	return date, nil
}

// Generate handles POST /api/facilities/{facilityId}/checkins/generate
func (h *CheckinHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	checkins, err := h.service.Generate(r.Context(), r.PathValue("facilityId"), req.CheckinDate, req.TemplateID)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"checkins": checkins,
		"count":    len(checkins),
	})
}

// List handles GET /api/facilities/{facilityId}/checkins?date=
func (h *CheckinHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	checkins, err := h.service.List(r.Context(), r.PathValue("facilityId"), date)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"checkins": checkins,
		"count":    len(checkins),
	})
}

// Get handles GET /api/facilities/{facilityId}/checkins/{id}
func (h *CheckinHandler) Get(w http.ResponseWriter, r *http.Request) {
	checkin, err := h.service.Get(r.Context(), r.PathValue("facilityId"), r.PathValue("id"))
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, checkin)
}

// DeleteNight handles DELETE /api/facilities/{facilityId}/checkins?date=
func (h *CheckinHandler) DeleteNight(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	deleted, err := h.service.DeleteNight(r.Context(), r.PathValue("facilityId"), date)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

// Assign handles POST /api/facilities/{facilityId}/checkins/{id}/assign
func (h *CheckinHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var payload services.AssignPayload
	if err := decodeJSON(r, &payload); err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	checkin, err := h.service.Assign(r.Context(), r.PathValue("facilityId"), r.PathValue("id"), payload)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, checkin)
}

// Deassign handles POST /api/facilities/{facilityId}/checkins/{id}/deassign
func (h *CheckinHandler) Deassign(w http.ResponseWriter, r *http.Request) {
	checkin, err := h.service.Deassign(r.Context(), r.PathValue("facilityId"), r.PathValue("id"))
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, checkin)
}

// Reassign handles POST /api/facilities/{facilityId}/checkins/{id}/reassign
func (h *CheckinHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	var payload services.ReassignPayload
	if err := decodeJSON(r, &payload); err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	checkin, err := h.service.Reassign(r.Context(), r.PathValue("facilityId"), r.PathValue("id"), payload)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, checkin)
}

// Update handles PATCH /api/facilities/{facilityId}/checkins/{id}
func (h *CheckinHandler) Update(w http.ResponseWriter, r *http.Request) {
	var details entities.Details
	if err := decodeJSON(r, &details); err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	checkin, err := h.service.Update(r.Context(), r.PathValue("facilityId"), r.PathValue("id"), details)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, checkin)
}
