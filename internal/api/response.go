package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/welwishers/weldshop/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	ItemID    int64             `json:"item_id,omitempty"`
	Requested *int              `json:"requested,omitempty"`
	Available *int              `json:"available,omitempty"`
}

// writeError maps store and billing errors to status codes. Unknown errors
// are logged and reported as 500 without details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *model.ValidationError
	var qerr *model.QuantityOutOfRangeError
	switch {
	case errors.As(err, &verr):
		jsonResponse(w, http.StatusUnprocessableEntity, errorBody{Error: model.ErrValidation.Error(), Fields: verr.Fields})
	case errors.As(err, &qerr):
		jsonResponse(w, http.StatusUnprocessableEntity, errorBody{
			Error:     qerr.Error(),
			ItemID:    qerr.ItemID,
			Requested: &qerr.Requested,
			Available: &qerr.Available,
		})
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}
