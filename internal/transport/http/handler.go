// Package httptransport is the thin HTTP layer between the UI and the sync
// core. It delegates to domain services without embedding business logic so
// transport concerns remain isolated.
package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jeevan/internal/domain"
	"jeevan/internal/queue"
	"jeevan/internal/reachability"
	syncer "jeevan/internal/sync"
	"jeevan/internal/vault"
	"jeevan/internal/verification"
	dErrors "jeevan/pkg/domain-errors"
	"jeevan/pkg/platform/httputil"
)

// BeneficiaryLister is the slice of the beneficiary service the transport
// needs.
type BeneficiaryLister interface {
	List(ctx context.Context, localityID string) ([]domain.Beneficiary, error)
}

// Handler wires the UI-facing endpoints to the sync core services.
type Handler struct {
	verifications *verification.Service
	queue         *queue.Manager
	vault         *vault.Service
	beneficiaries BeneficiaryLister
	orchestrator  *syncer.Orchestrator
	monitor       *reachability.Monitor
	logger        *slog.Logger
}

// New constructs the transport handler.
func New(
	verifications *verification.Service,
	queueMgr *queue.Manager,
	vaultSvc *vault.Service,
	beneficiaries BeneficiaryLister,
	orchestrator *syncer.Orchestrator,
	monitor *reachability.Monitor,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		verifications: verifications,
		queue:         queueMgr,
		vault:         vaultSvc,
		beneficiaries: beneficiaries,
		orchestrator:  orchestrator,
		monitor:       monitor,
		logger:        logger,
	}
}

// handleCompleteVerification commits one verification action.
func (h *Handler) handleCompleteVerification(w http.ResponseWriter, r *http.Request) {
	var req verification.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	result, err := h.verifications.Complete(r.Context(), req)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "complete verification", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleGetQueue(w http.ResponseWriter, r *http.Request) {
	subs, err := h.queue.Queue(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs, "count": len(subs)})
}

func (h *Handler) handleClearQueue(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.ClearQueue(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	subs, err := h.queue.History(r.Context(), r.URL.Query().Get("locality"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs, "count": len(subs)})
}

func (h *Handler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.queue.ClearHistory(r.Context()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleTriggerSync is the manual fallback for the automatic triggers.
func (h *Handler) handleTriggerSync(w http.ResponseWriter, r *http.Request) {
	result, err := h.orchestrator.TrySync(r.Context())
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "sync attempt failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	pending, err := h.orchestrator.PendingCount(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	queued, err := h.queue.Queue(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"online":         h.monitor.Online(),
		"forcedOffline":  h.monitor.ForcedOffline(),
		"inFlight":       h.orchestrator.InFlight(),
		"pendingRecords": pending,
		"queueDepth":     len(queued),
	})
}

// handleConnectivity receives platform online/offline transitions pushed by
// the UI shell.
func (h *Handler) handleConnectivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Online bool `json:"online"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	h.monitor.SetOnline(req.Online)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleForceOffline(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Forced bool `json:"forced"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	h.monitor.SetForceOffline(req.Forced)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleVaultRecords(w http.ResponseWriter, r *http.Request) {
	records, err := h.vault.Records(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records, "count": len(records)})
}

func (h *Handler) handleUpdateVaultRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status domain.RecordStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	switch req.Status {
	case domain.RecordPendingSync, domain.RecordSynced, domain.RecordFailed:
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown record status"))
		return
	}
	if err := h.vault.UpdateStatus(r.Context(), id, req.Status); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListBeneficiaries(w http.ResponseWriter, r *http.Request) {
	locality := r.URL.Query().Get("locality")
	if locality == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "locality query parameter is required"))
		return
	}
	records, err := h.beneficiaries.List(r.Context(), locality)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"beneficiaries": records, "count": len(records)})
}
