package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/order"
	"github.com/BlundaBranco/SweetCookies-Manager/internal/report"
)

type ReportHandler struct {
	service order.Service
	now     func() time.Time
}

func NewReportHandler(service order.Service) *ReportHandler {
	return &ReportHandler{service: service, now: time.Now}
}

func (h *ReportHandler) RegisterRoutes(router chi.Router) {
	router.Get("/export", h.handleExport)
}

func (h *ReportHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	exporter, err := report.ExporterFor(r.URL.Query().Get("format"))
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to export orders")
		return
	}

	orders, err := h.service.ListOrders(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err, "Failed to export orders")
		return
	}

	// Rendered in full first so a failure can still become a JSON error.
	var buf bytes.Buffer
	if err := exporter.Export(&buf, report.Rows(orders)); err != nil {
		respondWithServiceError(w, r, err, "Failed to export orders")
		return
	}

	filename := report.FileName(exporter, h.now())
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("file", filename).Msg("Failed to write export")
		return
	}

	log.Info().Str("file", filename).Int("orders", len(orders)).Msg("Orders exported")
}
