package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/metar-entity-sync/internal/domain"
	"github.com/couchcryptid/metar-entity-sync/internal/observability"
)

// Mirror is a secondary sink that receives a copy of each published entity.
type Mirror struct {
	Name string
	Sink EntitySink
}

// TeeSink publishes to a primary sink and, once the primary accepts an
// entity, copies it to every mirror. Mirror failures are logged and counted
// but never fail the publish.
type TeeSink struct {
	primary EntitySink
	mirrors []Mirror
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTeeSink wraps primary with the given mirrors.
func NewTeeSink(primary EntitySink, logger *slog.Logger, metrics *observability.Metrics, mirrors ...Mirror) *TeeSink {
	return &TeeSink{primary: primary, mirrors: mirrors, logger: logger, metrics: metrics}
}

// Publish implements EntitySink.
func (t *TeeSink) Publish(ctx context.Context, entity domain.StationEntity) error {
	if err := t.primary.Publish(ctx, entity); err != nil {
		return err
	}
	for _, m := range t.mirrors {
		if err := m.Sink.Publish(ctx, entity); err != nil {
			t.metrics.MirrorErrors.WithLabelValues(m.Name).Inc()
			t.logger.Warn("mirror publish failed",
				"sink", m.Name,
				"entity_id", entity.EntityID,
				"error", err,
			)
		}
	}
	return nil
}
