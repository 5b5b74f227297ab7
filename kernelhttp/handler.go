// Package kernelhttp exposes the kernel read model and activation requests
// over HTTP for embedders that drive the kernel remotely, such as a local
// debug panel. It consumes only the kernel's public surface — snapshots and
// activation forwarding — and never reaches into module or adapter
// internals.
package kernelhttp

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	kernel "github.com/Tonysmark/Mobile-Dev-Toolkit"
)

// NewHandler builds the HTTP surface over a kernel:
//
//	GET  /snapshot                  consolidated kernel snapshot
//	GET  /modules                   manifest list (sorted by id)
//	GET  /modules/activation        activation state only
//	GET  /adapters                  adapter snapshot
//	POST /modules/{id}/activate     activate a module
//	POST /modules/{id}/deactivate   deactivate a module
//	POST /modules/deactivate-all    deactivate every active module
func NewHandler(k *kernel.Kernel) http.Handler {
	h := &handler{kernel: k}

	r := chi.NewRouter()
	r.Get("/snapshot", h.getSnapshot)
	r.Get("/modules", h.getModules)
	r.Get("/modules/activation", h.getActivation)
	r.Get("/adapters", h.getAdapters)
	r.Post("/modules/deactivate-all", h.postDeactivateAll)
	r.Post("/modules/{id}/activate", h.postActivate)
	r.Post("/modules/{id}/deactivate", h.postDeactivate)
	return r
}

type handler struct {
	kernel *kernel.Kernel
}

func (h *handler) getSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.kernel.Snapshot())
}

func (h *handler) getModules(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.kernel.Snapshot().Modules.Manifests)
}

func (h *handler) getActivation(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.kernel.Snapshot().Modules.Activation)
}

func (h *handler) getAdapters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.kernel.Snapshot().Adapters)
}

func (h *handler) postActivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.kernel.ActivateModule(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.kernel.Snapshot().Modules.Activation)
}

func (h *handler) postDeactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.kernel.DeactivateModule(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.kernel.Snapshot().Modules.Activation)
}

func (h *handler) postDeactivateAll(w http.ResponseWriter, r *http.Request) {
	if err := h.kernel.DeactivateAllModules(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, h.kernel.Snapshot().Modules.Activation)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
