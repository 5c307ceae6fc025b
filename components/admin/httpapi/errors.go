package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/goliatone/go-library-admin/components/admin"
)

// ErrBadRequest marks malformed transport input.
var ErrBadRequest = errors.New("httpapi: bad request")

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

// StatusFor maps admin errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, admin.ErrIncompleteDraft):
		return http.StatusUnprocessableEntity
	case errors.Is(err, admin.ErrUnknownPanel), errors.Is(err, admin.ErrBookNotFound):
		return http.StatusNotFound
	case errors.Is(err, admin.ErrEditTargetMissing):
		return http.StatusConflict
	case errors.Is(err, ErrBadRequest), errors.Is(err, admin.ErrMissingSession):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AlertFor returns the banner text and offending fields for user-facing errors.
// It returns an empty alert for errors that are not shown in the page.
func AlertFor(err error) (string, []string) {
	var draftErr *admin.DraftError
	switch {
	case errors.As(err, &draftErr):
		return admin.AlertIncompleteDraft, draftErr.Fields
	case errors.Is(err, admin.ErrIncompleteDraft):
		return admin.AlertIncompleteDraft, nil
	case errors.Is(err, admin.ErrEditTargetMissing):
		return admin.AlertEditTargetMissing, nil
	default:
		return "", nil
	}
}

// NewErrorBody builds the JSON envelope for err.
func NewErrorBody(err error) ErrorBody {
	body := ErrorBody{Error: err.Error()}
	var draftErr *admin.DraftError
	if errors.As(err, &draftErr) {
		body.Fields = draftErr.Fields
	}
	return body
}

func respondError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), NewErrorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
