package audit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "matricula/pkg/domain-errors"
	"matricula/pkg/platform/httputil"
	"matricula/pkg/requestcontext"
)

// Lister reads back the retained audit trail.
type Lister interface {
	List(ctx context.Context) ([]Event, error)
}

// Handler serves the audit trail to admins.
type Handler struct {
	events Lister
	logger *slog.Logger
}

func NewHandler(events Lister, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

// RegisterAdmin mounts GET /admin/audit. Callers put it behind the admin gate.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit", h.handleList)
}

type listResponse struct {
	Total int     `json:"total"`
	Items []Event `json:"items"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	events, err := h.events.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, listResponse{Total: len(events), Items: events})
}
