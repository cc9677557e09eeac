package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pab1o16/turing-chat/internal/audit"
	"github.com/Pab1o16/turing-chat/internal/middleware"
	"github.com/Pab1o16/turing-chat/internal/service"
)

type ExportHandler struct {
	exportService *service.ExportService
}

func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// GET /debrief/{id}
func (h *ExportHandler) Debrief(w http.ResponseWriter, r *http.Request) {
	debrief, err := h.exportService.Debrief(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, debrief)
}

// GET /export
func (h *ExportHandler) ExportAll(w http.ResponseWriter, r *http.Request) {
	export, err := h.exportService.ExportAll(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:     audit.EventExport,
		Operator: middleware.GetOperator(r.Context()),
		Details:  map[string]any{"sessions": len(export.Sessions)},
	})

	filename := fmt.Sprintf("turing-export-%s.json", export.ExportedAt.UTC().Format("20060102T150405Z"))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	writeJSON(w, http.StatusOK, export)
}
