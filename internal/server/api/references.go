package api

import (
	stdjson "encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/gesture"
	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/store"
)

// ReferenceHandler records reference samples for configuration keys and
// retrains the averaged reference shape after each upload.
type ReferenceHandler struct {
	store    *store.Store
	trainer  *gesture.Trainer
	matcher  *gesture.ReferenceMatcher
	validate *validator.Validate
}

// NewReferenceHandler creates a ReferenceHandler. Trained references are
// pushed into matcher so matching picks them up without a restart.
func NewReferenceHandler(s *store.Store, matcher *gesture.ReferenceMatcher, v *validator.Validate) *ReferenceHandler {
	return &ReferenceHandler{
		store:    s,
		trainer:  gesture.NewTrainer(),
		matcher:  matcher,
		validate: v,
	}
}

// Register mounts the reference routes.
func (h *ReferenceHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/references", h.list).Methods(http.MethodGet)
	r.HandleFunc("/api/references/{key}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/api/references/{key}", h.delete).Methods(http.MethodDelete)
	r.HandleFunc("/api/references/{key}/samples", h.listSamples).Methods(http.MethodGet)
	r.HandleFunc("/api/references/{key}/samples", h.createSamples).Methods(http.MethodPost)
}

func referenceKey(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(mux.Vars(r)["key"]))
}

type createSamplesRequest struct {
	Samples   []jsoniter.RawMessage `json:"samples" validate:"required,min=1,max=200"`
	Tolerance float64               `json:"tolerance" validate:"omitempty,gt=0"`
}

type createSamplesResponse struct {
	Key       string  `json:"key"`
	Added     int     `json:"added"`
	Total     int     `json:"total"`
	Tolerance float64 `json:"tolerance"`
}

type listSamplesResponse struct {
	Samples []store.Sample `json:"samples"`
}

type listReferencesResponse struct {
	References []*store.Reference `json:"references"`
}

// list handles GET /api/references.
func (h *ReferenceHandler) list(w http.ResponseWriter, r *http.Request) {
	refs, err := h.store.References().List()
	if err != nil {
		writeInternal(w, r, "Failed to list references", err)
		return
	}
	if refs == nil {
		refs = []*store.Reference{}
	}
	writeJSON(w, http.StatusOK, listReferencesResponse{References: refs})
}

// get handles GET /api/references/{key}.
func (h *ReferenceHandler) get(w http.ResponseWriter, r *http.Request) {
	ref, err := h.store.References().Get(referenceKey(r))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeInternal(w, r, "Failed to get reference", err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// delete handles DELETE /api/references/{key}. Recorded samples go with it.
func (h *ReferenceHandler) delete(w http.ResponseWriter, r *http.Request) {
	key := referenceKey(r)
	if err := h.store.References().Delete(key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Reference not found")
			return
		}
		writeInternal(w, r, "Failed to delete reference", err)
		return
	}
	if err := h.store.Samples().DeleteByKey(key); err != nil {
		writeInternal(w, r, "Failed to delete samples", err)
		return
	}
	h.matcher.RemoveReference(key)
	w.WriteHeader(http.StatusNoContent)
}

// listSamples handles GET /api/references/{key}/samples.
func (h *ReferenceHandler) listSamples(w http.ResponseWriter, r *http.Request) {
	samples, err := h.store.Samples().GetByKey(referenceKey(r))
	if err != nil {
		writeInternal(w, r, "Failed to get samples", err)
		return
	}
	if samples == nil {
		samples = []store.Sample{}
	}
	writeJSON(w, http.StatusOK, listSamplesResponse{Samples: samples})
}

// createSamples handles POST /api/references/{key}/samples. The new samples
// are appended to those already recorded and the reference is retrained
// from all of them.
func (h *ReferenceHandler) createSamples(w http.ResponseWriter, r *http.Request) {
	key := referenceKey(r)
	if err := h.validate.Var(key, "lfpckey"); err != nil {
		writeError(w, http.StatusBadRequest, "Unknown configuration key")
		return
	}

	var req createSamplesRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Reject the batch before storing anything if one sample is unusable.
	if _, err := h.trainer.TrainStatic(req.Samples); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := make([]stdjson.RawMessage, len(req.Samples))
	for i, s := range req.Samples {
		raw[i] = stdjson.RawMessage(s)
	}
	total, err := h.store.Samples().Append(key, raw)
	if err != nil {
		writeInternal(w, r, "Failed to save samples", err)
		return
	}

	stored, err := h.store.Samples().GetByKey(key)
	if err != nil {
		writeInternal(w, r, "Failed to load samples", err)
		return
	}
	all := make([]jsoniter.RawMessage, len(stored))
	for i, s := range stored {
		all[i] = jsoniter.RawMessage(s.Data)
	}

	tolerance := req.Tolerance
	if tolerance == 0 {
		tolerance = gesture.DefaultTolerance
		if existing, err := h.store.References().Get(key); err == nil {
			tolerance = existing.Tolerance
		}
	}

	ref, err := h.trainer.Train(key, all, tolerance)
	if err != nil {
		writeInternal(w, r, "Failed to train reference", err)
		return
	}

	if err := h.store.References().Save(&store.Reference{
		Key:       ref.Key,
		Tolerance: ref.Tolerance,
		Samples:   ref.Samples,
		Landmarks: ref.Landmarks,
	}); err != nil {
		writeInternal(w, r, "Failed to save reference", err)
		return
	}
	h.matcher.SetReference(ref)

	logging.Info(logging.Fields{"key": key, "added": len(req.Samples), "total": total}, "reference retrained")

	writeJSON(w, http.StatusCreated, createSamplesResponse{
		Key:       key,
		Added:     len(req.Samples),
		Total:     total,
		Tolerance: tolerance,
	})
}
