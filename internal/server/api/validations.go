package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/ayusman/cuedspeech/internal/store"
)

const defaultValidationLimit = 50

// ValidationHandler serves the practice history.
type ValidationHandler struct {
	store *store.Store
}

// NewValidationHandler creates a ValidationHandler.
func NewValidationHandler(s *store.Store) *ValidationHandler {
	return &ValidationHandler{store: s}
}

// Register mounts the validation routes.
func (h *ValidationHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/validations", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/validations/stats", h.stats).Methods(http.MethodGet)
}

type listValidationsResponse struct {
	Validations []*store.Validation `json:"validations"`
}

// list handles GET /api/validations[?syllable_id=...&limit=N].
func (h *ValidationHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultValidationLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	validations, err := h.store.Validations().List(r.URL.Query().Get("syllable_id"), limit)
	if err != nil {
		writeInternal(w, r, "Failed to list validations", err)
		return
	}
	if validations == nil {
		validations = []*store.Validation{}
	}
	writeJSON(w, http.StatusOK, listValidationsResponse{Validations: validations})
}

type statsResponse struct {
	Stats []store.SyllableStats `json:"stats"`
}

// stats handles GET /api/validations/stats.
func (h *ValidationHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Validations().Stats()
	if err != nil {
		writeInternal(w, r, "Failed to compute stats", err)
		return
	}
	if stats == nil {
		stats = []store.SyllableStats{}
	}
	writeJSON(w, http.StatusOK, statsResponse{Stats: stats})
}
