package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "matricula/pkg/domain-errors"
	"matricula/pkg/platform/httputil"
	"matricula/pkg/platform/privacy"
	"matricula/pkg/requestcontext"
)

// Middleware limits POST requests per client IP.
type Middleware struct {
	store    Store
	cfg      Config
	logger   *slog.Logger
	rejected prometheus.Counter
}

// New builds the middleware. reg may be nil.
func New(store Store, cfg Config, logger *slog.Logger, reg prometheus.Registerer) *Middleware {
	m := &Middleware{store: store, cfg: cfg, logger: logger}
	if reg != nil {
		m.rejected = promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "matricula_rate_limited_total",
			Help: "Submissions rejected by the per-client rate limit",
		})
	}
	return m
}

// Handler enforces the limit on POST requests. Store failures let the
// request through.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	if m == nil || !m.cfg.Enabled() {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		ip := requestcontext.ClientIP(ctx)

		result, err := m.store.Allow(ctx, ip, m.cfg.Limit, m.cfg.Window)
		if err != nil {
			m.logger.ErrorContext(ctx, "failed to check rate limit",
				"request_id", requestcontext.RequestID(ctx),
				"ip_prefix", privacy.AnonymizeIP(ip),
				"error", err,
			)
			next.ServeHTTP(w, r)
			return
		}

		addHeaders(w, result)
		if !result.Allowed {
			if m.rejected != nil {
				m.rejected.Inc()
			}
			m.logger.WarnContext(ctx, "submission rate limited",
				"request_id", requestcontext.RequestID(ctx),
				"ip_prefix", privacy.AnonymizeIP(ip),
				"retry_after", result.RetryAfter,
			)
			w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many submissions, try again later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func addHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
