package events

import (
	"context"
	"io"

	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/pkg/config"
	"github.com/jhoicas/scm-api/pkg/logger"
)

// NopPublisher descarta los eventos; se usa cuando no hay brokers configurados.
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, ports.Event) error { return nil }

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New arma el publicador según la configuración: Kafka detrás del circuit breaker si hay
// brokers, no-op si no. El io.Closer devuelto debe cerrarse al apagar el servidor.
func New(cfg config.EventsConfig, log *logger.Logger, recorder Recorder) (ports.EventPublisher, io.Closer) {
	if !cfg.Enabled() {
		log.Info().Msg("eventos deshabilitados: KAFKA_BROKERS vacío")
		return NopPublisher{}, nopCloser{}
	}
	kp := NewKafkaPublisher(cfg)
	log.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("publicador de eventos Kafka")
	return NewBreakerPublisher(kp, DefaultBreakerSettings(), log, recorder), kp
}
