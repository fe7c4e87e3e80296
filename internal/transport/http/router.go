package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jeevan/pkg/platform/httputil"
)

// NewRouter wires all collaborator-facing endpoints.
func NewRouter(h *Handler, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Post("/verifications", h.handleCompleteVerification)

	r.Get("/queue", h.handleGetQueue)
	r.Delete("/queue", h.handleClearQueue)
	r.Get("/history", h.handleGetHistory)
	r.Delete("/history", h.handleClearHistory)

	r.Post("/sync", h.handleTriggerSync)
	r.Get("/sync/status", h.handleSyncStatus)

	r.Post("/connectivity", h.handleConnectivity)
	r.Post("/connectivity/force-offline", h.handleForceOffline)

	r.Get("/vault/records", h.handleVaultRecords)
	r.Patch("/vault/records/{id}", h.handleUpdateVaultRecord)

	r.Get("/beneficiaries", h.handleListBeneficiaries)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	return r
}
