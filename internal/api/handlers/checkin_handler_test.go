package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/shelterbeds/matcheckin/internal/api/handlers"
	"github.com/shelterbeds/matcheckin/internal/application/services"
	"github.com/shelterbeds/matcheckin/internal/domain/entities"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

type mockCheckinService struct {
	mock.Mock
}

func (m *mockCheckinService) Generate(ctx context.Context, facilityID string, date entities.Date, templateID string) ([]*entities.Checkin, error) {
	args := m.Called(ctx, facilityID, date, templateID)
	checkins, _ := args.Get(0).([]*entities.Checkin)
	return checkins, args.Error(1)
}

func (m *mockCheckinService) List(ctx context.Context, facilityID string, date entities.Date) ([]*entities.Checkin, error) {
	args := m.Called(ctx, facilityID, date)
	checkins, _ := args.Get(0).([]*entities.Checkin)
	return checkins, args.Error(1)
}

func (m *mockCheckinService) Get(ctx context.Context, facilityID, checkinID string) (*entities.Checkin, error) {
	args := m.Called(ctx, facilityID, checkinID)
	checkin, _ := args.Get(0).(*entities.Checkin)
	return checkin, args.Error(1)
}

func (m *mockCheckinService) DeleteNight(ctx context.Context, facilityID string, date entities.Date) (int64, error) {
	args := m.Called(ctx, facilityID, date)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCheckinService) Assign(ctx context.Context, facilityID, checkinID string, payload services.AssignPayload) (*entities.Checkin, error) {
	args := m.Called(ctx, facilityID, checkinID, payload)
	checkin, _ := args.Get(0).(*entities.Checkin)
	return checkin, args.Error(1)
}

func (m *mockCheckinService) Deassign(ctx context.Context, facilityID, checkinID string) (*entities.Checkin, error) {
	args := m.Called(ctx, facilityID, checkinID)
	checkin, _ := args.Get(0).(*entities.Checkin)
	return checkin, args.Error(1)
}

func (m *mockCheckinService) Reassign(ctx context.Context, facilityID, sourceID string, payload services.ReassignPayload) (*entities.Checkin, error) {
	args := m.Called(ctx, facilityID, sourceID, payload)
	checkin, _ := args.Get(0).(*entities.Checkin)
	return checkin, args.Error(1)
}

func (m *mockCheckinService) Update(ctx context.Context, facilityID, checkinID string, details entities.Details) (*entities.Checkin, error) {
	args := m.Called(ctx, facilityID, checkinID, details)
	checkin, _ := args.Get(0).(*entities.Checkin)
	return checkin, args.Error(1)
}

// serve routes req through a mux so path values are populated
func serve(pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, h)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestCheckinHandler_Generate(t *testing.T) {
	svc := &mockCheckinService{}
	handler := handlers.NewCheckinHandler(svc)
	date := entities.NewDate(2024, 1, 1)

	svc.On("Generate", mock.Anything, "F", date, "T").Return([]*entities.Checkin{
		{ID: "c1", FacilityID: "F", CheckinDate: date, MatNumber: 1},
		{ID: "c2", FacilityID: "F", CheckinDate: date, MatNumber: 2, Features: "H"},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/facilities/F/checkins/generate",
		strings.NewReader(`{"checkin_date":"2024-01-01","template_id":"T"}`))
	w := serve("POST /api/facilities/{facilityId}/checkins/generate", handler.Generate, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var body struct {
		Checkins []entities.Checkin `json:"checkins"`
		Count    int                `json:"count"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "H", body.Checkins[1].Features)
	assert.Equal(t, "2024-01-01", body.Checkins[0].CheckinDate.String())
	svc.AssertExpectations(t)
}

func TestCheckinHandler_Generate_BadDate(t *testing.T) {
	handler := handlers.NewCheckinHandler(&mockCheckinService{})

	req := httptest.NewRequest(http.MethodPost, "/api/facilities/F/checkins/generate",
		strings.NewReader(`{"checkin_date":"01/01/2024","template_id":"T"}`))
	w := serve("POST /api/facilities/{facilityId}/checkins/generate", handler.Generate, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckinHandler_Assign_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"occupied", apperrors.NewBadRequestError("checkin c1 is already occupied").WithField("checkin_id"), http.StatusBadRequest, "checkin_id"},
		{"missing guest", apperrors.NewNotFoundError("guest with id G not found").WithField("guest_id"), http.StatusNotFound, "guest_id"},
		{"same night", apperrors.NewConflictError("guest G already occupies mat 2").WithField("guest_id"), http.StatusConflict, "guest_id"},
		{"store failure", apperrors.NewInternalError("failed to assign checkin", assert.AnError), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockCheckinService{}
			handler := handlers.NewCheckinHandler(svc)
			wakeup := "05:30"
			svc.On("Assign", mock.Anything, "F", "c1", services.AssignPayload{
				GuestID: "G",
				Details: entities.Details{WakeupTime: &wakeup},
			}).Return(nil, tt.err)

			req := httptest.NewRequest(http.MethodPost, "/api/facilities/F/checkins/c1/assign",
				strings.NewReader(`{"guest_id":"G","wakeup_time":"05:30"}`))
			w := serve("POST /api/facilities/{facilityId}/checkins/{id}/assign", handler.Assign, req)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.field, body["field"])
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body["error"])
			}
		})
	}
}

func TestCheckinHandler_Update_RejectsGuestID(t *testing.T) {
	handler := handlers.NewCheckinHandler(&mockCheckinService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/facilities/F/checkins/c1",
		strings.NewReader(`{"guest_id":"G2","comments":"x"}`))
	w := serve("PATCH /api/facilities/{facilityId}/checkins/{id}", handler.Update, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckinHandler_Reassign(t *testing.T) {
	svc := &mockCheckinService{}
	handler := handlers.NewCheckinHandler(svc)
	guest := "G"

	svc.On("Reassign", mock.Anything, "F", "c1", services.ReassignPayload{CheckinID: "c3"}).
		Return(&entities.Checkin{ID: "c3", FacilityID: "F", MatNumber: 3, GuestID: &guest}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/facilities/F/checkins/c1/reassign",
		strings.NewReader(`{"checkin_id":"c3"}`))
	w := serve("POST /api/facilities/{facilityId}/checkins/{id}/reassign", handler.Reassign, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var got entities.Checkin
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, "c3", got.ID)
	assert.Equal(t, "G", *got.GuestID)
}

func TestCheckinHandler_ListAndDelete_RequireDate(t *testing.T) {
	svc := &mockCheckinService{}
	handler := handlers.NewCheckinHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/facilities/F/checkins", nil)
	w := serve("GET /api/facilities/{facilityId}/checkins", handler.List, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "date", decodeError(t, w)["field"])

	date := entities.NewDate(2024, 1, 1)
	svc.On("DeleteNight", mock.Anything, "F", date).Return(int64(3), nil)

	req = httptest.NewRequest(http.MethodDelete, "/api/facilities/F/checkins?date=2024-01-01", nil)
	w = serve("DELETE /api/facilities/{facilityId}/checkins", handler.DeleteNight, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":3}`, w.Body.String())
}

type stubMergeService struct {
	guest *entities.Guest
	err   error
	calls [][3]string
}

func (s *stubMergeService) Merge(_ context.Context, facilityID, toGuestID, fromGuestID string) (*entities.Guest, error) {
	s.calls = append(s.calls, [3]string{facilityID, toGuestID, fromGuestID})
	return s.guest, s.err
}

func TestGuestHandler_Merge(t *testing.T) {
	svc := &stubMergeService{guest: &entities.Guest{ID: "A", FacilityID: "F", FirstName: "Ann"}}
	handler := handlers.NewGuestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/facilities/F/guests/A/merge/C", nil)
	w := serve("POST /api/facilities/{facilityId}/guests/{toGuestId}/merge/{fromGuestId}", handler.Merge, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, [][3]string{{"F", "A", "C"}}, svc.calls)
	assert.NotContains(t, w.Body.String(), "checkins")

	svc.err = apperrors.NewConflictError("guests A and B both occupy a mat on 2024-02-01").WithField("from_guest_id")
	w = serve("POST /api/facilities/{facilityId}/guests/{toGuestId}/merge/{fromGuestId}", handler.Merge,
		httptest.NewRequest(http.MethodPost, "/api/facilities/F/guests/A/merge/B", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, decodeError(t, w)["error"], "2024-02-01")
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	healthy := handlers.NewHealthHandler(map[string]handlers.Pinger{"postgres": fakePinger{}, "redis": nil})
	w := httptest.NewRecorder()
	healthy.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","checks":{"postgres":"ok"}}`, w.Body.String())

	degraded := handlers.NewHealthHandler(map[string]handlers.Pinger{"postgres": fakePinger{err: assert.AnError}})
	w = httptest.NewRecorder()
	degraded.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
