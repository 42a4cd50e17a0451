package audit

import (
	"context"
	"log/slog"

	"matricula/pkg/platform/circuit"
)

// GuardedSink stops calling a failing sink for a cooldown so an unreachable
// broker does not stall every submission.
type GuardedSink struct {
	sink    Sink
	breaker *circuit.Breaker
}

// NewGuardedSink wraps s. Circuit transitions are logged when logger is set.
func NewGuardedSink(s Sink, logger *slog.Logger, opts ...circuit.Option) *GuardedSink {
	if logger != nil {
		opts = append(opts, circuit.WithStateChange(func(name string, from, to circuit.State) {
			logger.Warn("audit sink circuit changed",
				"sink", name,
				"from", from.String(),
				"to", to.String(),
			)
		}))
	}
	return &GuardedSink{
		sink:    s,
		breaker: circuit.New("audit_sink", opts...),
	}
}

// Send returns circuit.ErrOpen without calling the sink while the circuit is open.
func (g *GuardedSink) Send(ctx context.Context, event Event) error {
	return g.breaker.Do(func() error {
		return g.sink.Send(ctx, event)
	})
}
