package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"matricula/internal/enrollment/models"
	"matricula/internal/enrollment/render"
	"matricula/pkg/platform/httputil"
	"matricula/pkg/requestcontext"
)

// Service defines the enrollment operations the handler needs.
type Service interface {
	Enroll(ctx context.Context, raw models.Fields) (*models.Record, error)
	List(ctx context.Context) (*models.Listing, error)
}

// Handler serves the enrollment form, submissions and the admin listing.
type Handler struct {
	svc      Service
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates a new enrollment Handler.
func New(svc Service, renderer *render.Renderer, logger *slog.Logger) *Handler {
	return &Handler{
		svc:      svc,
		renderer: renderer,
		logger:   logger,
	}
}

// Register mounts the public routes. /matricular is kept as an alias of /submit.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.handleForm)
	r.Post("/submit", h.handleSubmit)
	r.Post("/matricular", h.handleSubmit)
}

// RegisterAdmin mounts the record listing. /admin/matriculas is an alias.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/records", h.handleListRecords)
	r.Get("/admin/matriculas", h.handleListRecords)
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.Form(w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render form",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err,
		)
		httputil.WriteError(w, err)
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	raw, err := decodeSubmission(r)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decode submission",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	record, err := h.svc.Enroll(ctx, raw)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			h.logger.InfoContext(ctx, "enrollment rejected",
				"request_id", requestID,
				"errors", len(verr.Messages),
			)
			h.renderPage(ctx, w, h.renderer.Error(w, verr.Messages))
			return
		}
		httputil.WriteError(w, err)
		return
	}

	h.renderPage(ctx, w, h.renderer.Success(w, record))
}

func (h *Handler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	listing, err := h.svc.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toListingResponse(listing))
}

// renderPage logs template failures. Renderer buffers the page, so on
// failure nothing has been written yet and a 500 can still be sent.
func (h *Handler) renderPage(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	h.logger.ErrorContext(ctx, "failed to render page",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}

// decodeSubmission reads the body as JSON or as a (multipart) form.
func decodeSubmission(r *http.Request) (models.Fields, error) {
	mediaType, err := httputil.MediaType(r)
	if err != nil {
		return models.Fields{}, err
	}
	if mediaType == "application/json" {
		req, err := httputil.DecodeJSON[SubmitRequest](r)
		if err != nil {
			return models.Fields{}, err
		}
		return req.fields(), nil
	}
	if err := httputil.ParseForm(r, mediaType); err != nil {
		return models.Fields{}, err
	}
	return fieldsFromForm(r.PostForm), nil
}
