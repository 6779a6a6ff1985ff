package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shelterbeds/matcheckin/internal/api/handlers"
	"github.com/shelterbeds/matcheckin/internal/domain/providers"
	apperrors "github.com/shelterbeds/matcheckin/pkg/errors"
)

const (
	// CallerScopesHeader lists the scopes the auth gateway granted the
	// caller, comma separated
	CallerScopesHeader = "X-Caller-Scopes"

	// AdminScope grants access to every facility
	AdminScope = "admin"
)

// CallerScopes parses CallerScopesHeader
func CallerScopes(r *http.Request) map[string]struct{} {
	scopes := make(map[string]struct{})
	for _, s := range strings.Split(r.Header.Get(CallerScopesHeader), ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes[s] = struct{}{}
		}
	}
	return scopes
}

// ScopeAuthorizer checks the caller's scopes against the facility in the path
type ScopeAuthorizer struct {
	resolver providers.ScopeResolver
}

// NewScopeAuthorizer creates an authorizer backed by resolver
func NewScopeAuthorizer(resolver providers.ScopeResolver) *ScopeAuthorizer {
	return &ScopeAuthorizer{resolver: resolver}
}

// RequireFacility admits callers holding the facility's scope or AdminScope
func (a *ScopeAuthorizer) RequireFacility(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scopes := CallerScopes(r)
		if len(scopes) == 0 {
			handlers.RespondWithAppError(w, r, apperrors.NewUnauthorizedError("caller scopes are missing"))
			return
		}
		if _, ok := scopes[AdminScope]; ok {
			next(w, r)
			return
		}

		facilityID := r.PathValue("facilityId")
		scope, err := a.resolver.Resolve(r.Context(), facilityID)
		if err != nil {
			handlers.RespondWithAppError(w, r, err)
			return
		}
		if _, ok := scopes[scope]; !ok {
			handlers.RespondWithAppError(w, r, apperrors.NewForbiddenError(
				fmt.Sprintf("caller may not act on facility %s", facilityID),
			).WithField("facility_id"))
			return
		}
		next(w, r)
	}
}

// RequireAdmin admits only callers holding AdminScope
func (a *ScopeAuthorizer) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scopes := CallerScopes(r)
		if len(scopes) == 0 {
			handlers.RespondWithAppError(w, r, apperrors.NewUnauthorizedError("caller scopes are missing"))
			return
		}
		if _, ok := scopes[AdminScope]; !ok {
			handlers.RespondWithAppError(w, r, apperrors.NewForbiddenError("admin scope is required"))
			return
		}
		next(w, r)
	}
}
