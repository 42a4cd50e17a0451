package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	"matricula/internal/audit"
	"matricula/internal/enrollment/handler"
	"matricula/internal/platform/health"
	"matricula/pkg/platform/middleware/admin"
	"matricula/pkg/platform/middleware/metadata"
	"matricula/pkg/platform/middleware/request"
	"matricula/pkg/platform/middleware/requesttime"
)

// submissionMediaTypes are the bodies accepted on the submit routes.
var submissionMediaTypes = []string{
	"application/x-www-form-urlencoded",
	"multipart/form-data",
	"application/json",
}

// Deps carries everything the router mounts.
type Deps struct {
	Logger         *slog.Logger
	Enrollment     *handler.Handler
	Audit          *audit.Handler
	Health         *health.Handler
	AdminToken     string
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration
	Latency        *request.Metrics
	// RateLimit guards the submit routes when set.
	RateLimit func(http.Handler) http.Handler
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

// NewRouter wires every endpoint behind the shared middleware stack.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: d.TrustedProxies}).Handler)
	r.Use(request.Logger(d.Logger))
	r.Use(request.LatencyMiddleware(d.Latency, routePattern))
	r.Use(request.BodyLimit(request.DefaultMaxBodyBytes))
	if d.RequestTimeout > 0 {
		r.Use(request.Timeout(d.RequestTimeout))
	}

	d.Health.Register(r)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(request.AllowContentTypes(submissionMediaTypes...))
		if d.RateLimit != nil {
			r.Use(d.RateLimit)
		}
		d.Enrollment.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(d.AdminToken, d.Logger))
		d.Enrollment.RegisterAdmin(r)
		if d.Audit != nil {
			d.Audit.RegisterAdmin(r)
		}
	})

	return r
}

// routePattern labels latency by route template so raw paths never become labels.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
