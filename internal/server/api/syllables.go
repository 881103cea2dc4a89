package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/ayusman/cuedspeech/internal/store"
)

// SyllableHandler handles HTTP requests for syllable resources.
type SyllableHandler struct {
	store    *store.Store
	validate *validator.Validate
}

// NewSyllableHandler creates a new SyllableHandler with the given store.
func NewSyllableHandler(s *store.Store, v *validator.Validate) *SyllableHandler {
	return &SyllableHandler{store: s, validate: v}
}

// Register mounts the syllable routes.
func (h *SyllableHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/syllables", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/syllables", h.create).Methods(http.MethodPost)
	r.HandleFunc("/api/syllables/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/syllables/{id}", h.update).Methods(http.MethodPut)
	r.HandleFunc("/api/syllables/{id}", h.delete).Methods(http.MethodDelete)
}

type syllableRequest struct {
	Text               string  `json:"text" validate:"required,max=16"`
	Consonne           *string `json:"consonne" validate:"omitempty,max=4"`
	Voyelle            *string `json:"voyelle" validate:"omitempty,max=4"`
	HandSignKey        *string `json:"hand_sign_key" validate:"omitempty,lfpckey"`
	HandPositionConfig *int    `json:"hand_position_config" validate:"omitempty,min=1,max=5"`
	Description        string  `json:"description" validate:"max=256"`
	Level              string  `json:"level" validate:"omitempty,oneof=beginner standard"`
}

func (req *syllableRequest) apply(s *store.Syllable) {
	s.Text = strings.TrimSpace(req.Text)
	s.Consonne = req.Consonne
	s.Voyelle = req.Voyelle
	s.HandSignKey = req.HandSignKey
	if s.HandSignKey != nil {
		k := strings.ToUpper(strings.TrimSpace(*s.HandSignKey))
		s.HandSignKey = &k
	}
	s.HandPositionConfig = req.HandPositionConfig
	s.Description = req.Description
	s.Level = req.Level
}

type listSyllablesResponse struct {
	Syllables []*store.Syllable `json:"syllables"`
}

// list handles GET /api/syllables[?level=beginner].
func (h *SyllableHandler) list(w http.ResponseWriter, r *http.Request) {
	syllables, err := h.store.Syllables().List(r.URL.Query().Get("level"))
	if err != nil {
		writeInternal(w, r, "Failed to list syllables", err)
		return
	}
	if syllables == nil {
		syllables = []*store.Syllable{}
	}
	writeJSON(w, http.StatusOK, listSyllablesResponse{Syllables: syllables})
}

// create handles POST /api/syllables.
func (h *SyllableHandler) create(w http.ResponseWriter, r *http.Request) {
	var req syllableRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.store.Syllables().GetByText(strings.TrimSpace(req.Text)); err == nil {
		writeError(w, http.StatusConflict, "Syllable already exists")
		return
	}

	s := &store.Syllable{}
	req.apply(s)
	if err := h.store.Syllables().Create(s); err != nil {
		writeInternal(w, r, "Failed to create syllable", err)
		return
	}

	writeJSON(w, http.StatusCreated, s)
}

// get handles GET /api/syllables/{id}.
func (h *SyllableHandler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Syllables().GetByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Syllable not found")
			return
		}
		writeInternal(w, r, "Failed to get syllable", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// update handles PUT /api/syllables/{id}.
func (h *SyllableHandler) update(w http.ResponseWriter, r *http.Request) {
	existing, err := h.store.Syllables().GetByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Syllable not found")
			return
		}
		writeInternal(w, r, "Failed to get syllable", err)
		return
	}

	var req syllableRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.apply(existing)
	if err := h.store.Syllables().Update(existing); err != nil {
		writeInternal(w, r, "Failed to update syllable", err)
		return
	}

	writeJSON(w, http.StatusOK, existing)
}

// delete handles DELETE /api/syllables/{id}.
func (h *SyllableHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Syllables().Delete(mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Syllable not found")
			return
		}
		writeInternal(w, r, "Failed to delete syllable", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
