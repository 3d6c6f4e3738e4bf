package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/pkg/logger"
)

// ErrPublisherUnavailable el circuito está abierto: el evento se descarta sin tocar el broker.
var ErrPublisherUnavailable = errors.New("events: publicador no disponible (circuito abierto)")

// Recorder recibe el resultado de cada publicación (métricas).
type Recorder interface {
	EventPublished(eventType string, err error)
}

// BreakerSettings umbrales del circuito.
type BreakerSettings struct {
	ConsecutiveFailures uint32        // fallos seguidos que abren el circuito
	OpenTimeout         time.Duration // tiempo abierto antes de probar de nuevo
	HalfOpenRequests    uint32
}

// DefaultBreakerSettings 5 fallos seguidos abren el circuito durante 30s.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second, HalfOpenRequests: 1}
}

// BreakerPublisher protege otro publicador con un circuit breaker. Con el broker caído las
// peticiones HTTP no pagan el timeout de escritura en cada evento.
type BreakerPublisher struct {
	next     ports.EventPublisher
	cb       *gobreaker.CircuitBreaker
	recorder Recorder
}

// NewBreakerPublisher envuelve next. recorder puede ser nil.
func NewBreakerPublisher(next ports.EventPublisher, s BreakerSettings, log *logger.Logger, recorder Recorder) *BreakerPublisher {
	if log == nil {
		log = logger.Nop()
	}
	st := gobreaker.Settings{
		Name:        "event-publisher",
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("cambio de estado del circuito de eventos")
		},
	}
	return &BreakerPublisher{next: next, cb: gobreaker.NewCircuitBreaker(st), recorder: recorder}
}

// Publish delega en el publicador interno salvo que el circuito esté abierto.
func (p *BreakerPublisher) Publish(ctx context.Context, event ports.Event) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.next.Publish(ctx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %s", ErrPublisherUnavailable, event.Type)
	}
	if p.recorder != nil {
		p.recorder.EventPublished(event.Type, err)
	}
	return err
}

// State estado actual del circuito (closed, half-open, open).
func (p *BreakerPublisher) State() string {
	return p.cb.State().String()
}
