package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/lfpc"
)

// StabilityHandler exposes the validation gate and the stability profiles.
type StabilityHandler struct {
	engine   *config.Engine
	validate *validator.Validate
}

// NewStabilityHandler creates a StabilityHandler.
func NewStabilityHandler(engine *config.Engine, v *validator.Validate) *StabilityHandler {
	return &StabilityHandler{engine: engine, validate: v}
}

// Register mounts the stability routes.
func (h *StabilityHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/stability", h.check).Methods(http.MethodPost)
	r.HandleFunc("/api/profiles", h.profiles).Methods(http.MethodGet)
}

type stabilityRequest struct {
	History []int `json:"history" validate:"dive,min=0,max=100"`
	// Either a profile name or an explicit threshold and duration.
	Profile   string `json:"profile"`
	Threshold int    `json:"threshold" validate:"min=0,max=100"`
	Duration  int    `json:"duration" validate:"min=0"`
}

type stabilityResponse struct {
	Stable    bool `json:"stable"`
	Threshold int  `json:"threshold"`
	Duration  int  `json:"duration"`
}

// check handles POST /api/stability.
func (h *StabilityHandler) check(w http.ResponseWriter, r *http.Request) {
	var req stabilityRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	threshold, duration := req.Threshold, req.Duration
	if req.Profile != "" {
		p, err := h.engine.Profile(req.Profile)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		threshold, duration = p.Threshold, p.Window
	}

	writeJSON(w, http.StatusOK, stabilityResponse{
		Stable:    lfpc.IsValidationStable(req.History, threshold, duration),
		Threshold: threshold,
		Duration:  duration,
	})
}

type profilesResponse struct {
	Profiles    map[string]lfpc.StabilityProfile `json:"profiles"`
	Tuning      lfpc.MatcherTuning               `json:"tuning"`
	GroupPolicy lfpc.GroupPolicy                 `json:"group_policy"`
}

// profiles handles GET /api/profiles.
func (h *StabilityHandler) profiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profilesResponse{
		Profiles:    h.engine.Profiles,
		Tuning:      h.engine.Tuning,
		GroupPolicy: h.engine.GroupPolicy,
	})
}
