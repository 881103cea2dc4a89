package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/config"
	"github.com/ayusman/cuedspeech/internal/gesture"
	"github.com/ayusman/cuedspeech/internal/landmark"
	"github.com/ayusman/cuedspeech/internal/lfpc"
	"github.com/ayusman/cuedspeech/internal/store"
)

// MatchHandler scores single frames against targets.
type MatchHandler struct {
	store      *store.Store
	engine     *config.Engine
	matcher    *lfpc.Matcher
	references *gesture.ReferenceMatcher
	validate   *validator.Validate
}

// NewMatchHandler creates a MatchHandler. s and references may be nil; without
// a store only inline targets are accepted.
func NewMatchHandler(s *store.Store, engine *config.Engine, references *gesture.ReferenceMatcher, v *validator.Validate) *MatchHandler {
	return &MatchHandler{
		store:      s,
		engine:     engine,
		matcher:    engine.Matcher(),
		references: references,
		validate:   v,
	}
}

// Register mounts the matching routes.
func (h *MatchHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/match", h.match).Methods(http.MethodPost)
	r.HandleFunc("/api/configurations/estimate", h.estimate).Methods(http.MethodPost)
	r.HandleFunc("/api/configurations/compare", h.compare).Methods(http.MethodPost)
}

type matchRequest struct {
	Landmarks  jsoniter.RawMessage  `json:"landmarks"`
	Target     *lfpc.TargetSyllable `json:"target" validate:"required_without=SyllableID"`
	SyllableID string               `json:"syllable_id"`
	Policy     string               `json:"policy" validate:"omitempty,oneof=group strict"`
}

type matchResponse struct {
	Result lfpc.MatchResult     `json:"result"`
	Target *lfpc.TargetSyllable `json:"target"`
	// Hint is the closest trained reference shape, when any are loaded.
	Hint *gesture.Match `json:"hint,omitempty"`
}

// match handles POST /api/match. A missing or malformed landmark frame is
// scored as "no hand", never rejected.
func (h *MatchHandler) match(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	target := req.Target
	if target == nil {
		if h.store == nil {
			writeError(w, http.StatusBadRequest, "syllable_id needs a syllable store, send an inline target")
			return
		}
		s, err := h.store.Syllables().GetByID(req.SyllableID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Syllable not found")
				return
			}
			writeInternal(w, r, "Failed to get syllable", err)
			return
		}
		target = s.Target()
	}

	matcher := h.matcher
	if req.Policy != "" {
		policy, _ := lfpc.ParseGroupPolicy(req.Policy)
		matcher = lfpc.NewMatcher(h.engine.Tuning, policy)
	}

	hand, err := landmark.ParseFrame(req.Landmarks)
	if err != nil {
		hand = nil
	}

	resp := matchResponse{
		Result: matcher.Match(hand, target),
		Target: target,
	}
	if hand != nil && h.references != nil {
		if m, ok := h.references.Closest(hand); ok {
			resp.Hint = &m
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type frameRequest struct {
	Landmarks jsoniter.RawMessage `json:"landmarks" validate:"required"`
}

type estimateResponse struct {
	HandDetected  bool                        `json:"hand_detected"`
	Configuration *lfpc.ConfigurationEstimate `json:"configuration,omitempty"`
	Group         []string                    `json:"group,omitempty"`
	Position      lfpc.Zone                   `json:"position"`
	PositionLabel string                      `json:"position_label,omitempty"`
	Ratio         float64                     `json:"ratio"`
}

// estimate handles POST /api/configurations/estimate.
func (h *MatchHandler) estimate(w http.ResponseWriter, r *http.Request) {
	var req frameRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hand, err := landmark.ParseFrame(req.Landmarks)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if hand == nil {
		writeJSON(w, http.StatusOK, estimateResponse{})
		return
	}

	tuning := h.engine.Tuning
	est := lfpc.EstimateConfiguration(hand, tuning)
	zone := lfpc.EstimatePosition(hand, tuning)

	writeJSON(w, http.StatusOK, estimateResponse{
		HandDetected:  true,
		Configuration: &est,
		Group:         lfpc.ConfigurationGroup(est.Key),
		Position:      zone,
		PositionLabel: zone.Label(),
		Ratio:         lfpc.VerticalRatio(hand, tuning),
	})
}

type compareRequest struct {
	Landmarks     jsoniter.RawMessage `json:"landmarks" validate:"required"`
	Configuration int                 `json:"configuration" validate:"required,min=1,max=8"`
}

type compareResponse struct {
	Configuration int                        `json:"configuration"`
	Acceptable    []string                   `json:"acceptable"`
	Confidence    int                        `json:"confidence"`
	Estimate      lfpc.ConfigurationEstimate `json:"estimate"`
	References    []gesture.Match            `json:"references"`
}

// compare handles POST /api/configurations/compare: the beginner check of a
// hand against a numbered configuration.
func (h *MatchHandler) compare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	hand, err := landmark.ParseFrame(req.Landmarks)
	if err != nil {
		hand = nil
	}

	acceptable := lfpc.AcceptableKeys(req.Configuration)
	resp := compareResponse{
		Configuration: req.Configuration,
		Acceptable:    acceptable,
		References:    []gesture.Match{},
	}
	if hand != nil {
		resp.Estimate = lfpc.EstimateConfiguration(hand, h.engine.Tuning)
		resp.Confidence = lfpc.HandConfigurationConfidence(resp.Estimate, acceptable)
		if h.references != nil {
			resp.References = h.references.Match(hand)
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
