package handler

import (
	"log/slog"
	"net/http"

	"github.com/aryan0dhankhar/leadtrack/internal/service"
)

// ReportHandler serves the overview rollup and scoped reports
type ReportHandler struct {
	reports *service.ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *service.ReportService, logger *slog.Logger) *ReportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportHandler{reports: reports, logger: logger}
}

// Overview handles GET /api/reports/overview?timeframe=week|month|all
func (h *ReportHandler) Overview(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	tf, err := service.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	overview, err := h.reports.GetOverviewStats(r.Context(), user, tf)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

// Detail handles GET /api/reports?target=&scope=user|team|org&timeframe=
func (h *ReportHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	tf, err := service.ParseTimeframe(q.Get("timeframe"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	scope, err := service.ParseReportScope(q.Get("scope"))
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	target := q.Get("target")
	if target == "" {
		target = service.TargetAll
	}

	report, err := h.reports.GetReportData(r.Context(), user, target, scope, tf)
	if err != nil {
		writeError(w, h.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
