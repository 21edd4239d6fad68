package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/habitutor/habitutor-api/internal/api/shared"
	"github.com/habitutor/habitutor-api/internal/domain"
)

// principalFromRequest returns the caller placed in the context by the auth
// middleware, writing a 401 when it is missing.
func principalFromRequest(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	p, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return domain.Principal{}, false
	}
	return p, true
}

// optionalQueryID parses a positive integer query parameter. An absent
// parameter yields nil.
func optionalQueryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("%w: %s must be a positive integer", domain.ErrInvalidID, name)
	}
	return &id, nil
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}
	return true
}
