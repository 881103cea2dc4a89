package api

import (
	stdjson "encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/hook"
	"github.com/ayusman/cuedspeech/internal/store"
)

// HookHandler lists discovered hooks and manages their event bindings.
type HookHandler struct {
	store    *store.Store
	manager  *hook.Manager
	validate *validator.Validate
}

// NewHookHandler creates a HookHandler. manager may be nil when hooks are
// disabled; bindings can still be managed.
func NewHookHandler(s *store.Store, manager *hook.Manager, v *validator.Validate) *HookHandler {
	return &HookHandler{store: s, manager: manager, validate: v}
}

// Register mounts the hook routes.
func (h *HookHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/hooks", h.listHooks).Methods(http.MethodGet)
	r.HandleFunc("/api/hooks/bindings", h.listBindings).Methods(http.MethodGet)
	r.HandleFunc("/api/hooks/bindings", h.createBinding).Methods(http.MethodPost)
	r.HandleFunc("/api/hooks/bindings/{id}", h.updateBinding).Methods(http.MethodPut)
	r.HandleFunc("/api/hooks/bindings/{id}", h.deleteBinding).Methods(http.MethodDelete)
}

type hookResponse struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Events      []string `json:"events"`
}

type listHooksResponse struct {
	Hooks []hookResponse `json:"hooks"`
}

// listHooks handles GET /api/hooks.
func (h *HookHandler) listHooks(w http.ResponseWriter, r *http.Request) {
	resp := listHooksResponse{Hooks: []hookResponse{}}
	if h.manager != nil {
		for _, hk := range h.manager.List() {
			resp.Hooks = append(resp.Hooks, hookResponse{
				Name:        hk.Manifest.Name,
				Version:     hk.Manifest.Version,
				Description: hk.Manifest.Description,
				Events:      hk.Manifest.Events,
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type bindingRequest struct {
	HookName string              `json:"hook_name" validate:"required"`
	Event    string              `json:"event" validate:"required,oneof=validated skipped"`
	Config   jsoniter.RawMessage `json:"config"`
	Enabled  *bool               `json:"enabled"`
}

func (req *bindingRequest) apply(b *store.HookBinding) {
	b.HookName = req.HookName
	b.Event = req.Event
	b.Config = stdjson.RawMessage(req.Config)
	b.Enabled = req.Enabled == nil || *req.Enabled
}

type listBindingsResponse struct {
	Bindings []*store.HookBinding `json:"bindings"`
}

// listBindings handles GET /api/hooks/bindings.
func (h *HookHandler) listBindings(w http.ResponseWriter, r *http.Request) {
	bindings, err := h.store.HookBindings().List()
	if err != nil {
		writeInternal(w, r, "Failed to list bindings", err)
		return
	}
	if bindings == nil {
		bindings = []*store.HookBinding{}
	}
	writeJSON(w, http.StatusOK, listBindingsResponse{Bindings: bindings})
}

// createBinding handles POST /api/hooks/bindings.
func (h *HookHandler) createBinding(w http.ResponseWriter, r *http.Request) {
	var req bindingRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.manager != nil {
		if _, err := h.manager.Get(req.HookName); err != nil {
			writeError(w, http.StatusBadRequest, "Unknown hook")
			return
		}
	}

	b := &store.HookBinding{}
	req.apply(b)
	if err := h.store.HookBindings().Create(b); err != nil {
		writeInternal(w, r, "Failed to create binding", err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// updateBinding handles PUT /api/hooks/bindings/{id}.
func (h *HookHandler) updateBinding(w http.ResponseWriter, r *http.Request) {
	b, err := h.store.HookBindings().GetByID(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeInternal(w, r, "Failed to get binding", err)
		return
	}

	var req bindingRequest
	if err := decodeAndValidate(r, h.validate, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.apply(b)
	if err := h.store.HookBindings().Update(b); err != nil {
		writeInternal(w, r, "Failed to update binding", err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// deleteBinding handles DELETE /api/hooks/bindings/{id}.
func (h *HookHandler) deleteBinding(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HookBindings().Delete(mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Binding not found")
			return
		}
		writeInternal(w, r, "Failed to delete binding", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
