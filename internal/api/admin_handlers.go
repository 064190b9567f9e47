package api

import (
	"net/http"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/models"
)

// TriggerAdmin marks reconciliation passes requested over HTTP.
const TriggerAdmin = "admin"

type reconcileResponse struct {
	Checked           int                       `json:"checked"`
	FixedCount        int                       `json:"fixed_count"`
	SuspiciousRecords []models.SuspiciousRecord `json:"suspicious_records"`
}

// handleReconcile runs a pass inline, or queues one for the worker pool
// when called with ?async=true.
func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if r.URL.Query().Get("async") == "true" && s.Jobs != nil {
		if err := s.Jobs.EnqueueReconcile(TriggerAdmin); err != nil {
			log.Warn("failed to queue reconciliation: %v", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "busy"})
			return
		}
		writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
		return
	}

	report, err := s.Reconcile.ReconcileShownCounts(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}

	suspicious := report.Suspicious
	if suspicious == nil {
		suspicious = []models.SuspiciousRecord{}
	}
	writeJSON(w, r, http.StatusOK, reconcileResponse{
		Checked:           report.Checked,
		FixedCount:        report.Fixed,
		SuspiciousRecords: suspicious,
	})
}
