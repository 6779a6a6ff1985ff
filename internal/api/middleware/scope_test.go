package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelterbeds/matcheckin/internal/api/middleware"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

type staticResolver map[string]string

func (r staticResolver) Resolve(_ context.Context, facilityID string) (string, error) {
	scope, ok := r[facilityID]
	if !ok {
		return "", apperrors.NewNotFoundError("facility with id " + facilityID + " not found").WithField("facility_id")
	}
	return scope, nil
}

func ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestScopeAuthorizer_RequireFacility(t *testing.T) {
	auth := middleware.NewScopeAuthorizer(staticResolver{"F": "facility:north"})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/facilities/{facilityId}/checkins", auth.RequireFacility(ok))

	tests := []struct {
		name     string
		facility string
		scopes   string
		want     int
	}{
		{"matching scope", "F", "facility:north", http.StatusOK},
		{"one of several scopes", "F", "facility:south, facility:north", http.StatusOK},
		{"admin", "F", "admin", http.StatusOK},
		{"other facility scope", "F", "facility:south", http.StatusForbidden},
		{"no scopes", "F", "", http.StatusUnauthorized},
		{"unknown facility", "NOPE", "facility:north", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/facilities/"+tt.facility+"/checkins", nil)
			if tt.scopes != "" {
				req.Header.Set(middleware.CallerScopesHeader, tt.scopes)
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestScopeAuthorizer_RequireAdmin(t *testing.T) {
	auth := middleware.NewScopeAuthorizer(staticResolver{})
	handler := auth.RequireAdmin(ok)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(middleware.CallerScopesHeader, "facility:north")
	w := httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req.Header.Set(middleware.CallerScopesHeader, "admin")
	w = httptest.NewRecorder()
	handler(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	handler := middleware.CORS([]string{"https://desk.example.org"})(http.HandlerFunc(ok))

	req := httptest.NewRequest(http.MethodOptions, "/api/facilities/F/checkins", nil)
	req.Header.Set("Origin", "https://desk.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", strings.ToLower(middleware.CallerScopesHeader))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://desk.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), strings.ToLower(middleware.CallerScopesHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
