package activation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nstehr/vimy/tactics-core/activation"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	commands    metric.Int64Counter
	timeouts    metric.Int64Counter
	reserves    metric.Int64Counter
	activations metric.Int64Counter
}

// newMetrics uses the global meter provider, a no-op unless the process
// installs one.
func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)
	out.commands, err = m.Int64Counter(
		"activation.commands.published",
		metric.WithDescription("Action commands published, by type and reason"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating commands counter: %w", err)
	}
	out.timeouts, err = m.Int64Counter(
		"activation.notify.timeouts",
		metric.WithDescription("Notification waits abandoned after the timeout"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating timeouts counter: %w", err)
	}
	out.reserves, err = m.Int64Counter(
		"activation.reserve.decisions",
		metric.WithDescription("Reserve decisions, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating reserve counter: %w", err)
	}
	out.activations, err = m.Int64Counter(
		"activation.completed",
		metric.WithDescription("Activations completed, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating activations counter: %w", err)
	}
	return &out, nil
}

func (m *metrics) command(typ, reason string) {
	m.commands.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("type", typ),
		attribute.String("reason", reason),
	))
}

func (m *metrics) timeout() {
	m.timeouts.Add(context.Background(), 1)
}

func (m *metrics) reserve(deferred bool, reason string) {
	m.reserves.Add(context.Background(), 1, metric.WithAttributes(
		attribute.Bool("defer", deferred),
		attribute.String("reason", reason),
	))
}

func (m *metrics) completed(interrupt bool) {
	kind := "turn"
	if interrupt {
		kind = "interrupt"
	}
	m.activations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("kind", kind)))
}
