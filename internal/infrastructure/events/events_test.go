package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/internal/infrastructure/events"
	"github.com/jhoicas/scm-api/pkg/config"
	"github.com/jhoicas/scm-api/pkg/logger"
)

type fallido struct {
	calls int
	err   error
}

func (f *fallido) Publish(context.Context, ports.Event) error {
	f.calls++
	return f.err
}

type recorder struct {
	ok, failed int
}

func (r *recorder) EventPublished(_ string, err error) {
	if err != nil {
		r.failed++
		return
	}
	r.ok++
}

func evento() ports.Event {
	return ports.Event{
		ID:         "e1",
		Type:       ports.EventShipmentArrived,
		CompanyID:  "c1",
		Subject:    "sh-1",
		OccurredAt: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC),
		Data:       map[string]any{"tracking": "MSKU123"},
	}
}

func TestEncodeMessage_ClaveYCabeceras(t *testing.T) {
	msg, err := events.EncodeMessage(evento())
	require.NoError(t, err)

	assert.Equal(t, "sh-1", string(msg.Key), "la clave es el agregado para conservar el orden")
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, ports.EventShipmentArrived, headers["event-type"])
	assert.Equal(t, "c1", headers["company-id"])

	var decoded ports.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "MSKU123", decoded.Data["tracking"])
}

func TestBreaker_AbreTrasFallosConsecutivos(t *testing.T) {
	next := &fallido{err: errors.New("broker caído")}
	rec := &recorder{}
	p := events.NewBreakerPublisher(next, events.BreakerSettings{
		ConsecutiveFailures: 3, OpenTimeout: time.Minute, HalfOpenRequests: 1,
	}, logger.Nop(), rec)

	for i := 0; i < 3; i++ {
		assert.Error(t, p.Publish(context.Background(), evento()))
	}
	assert.Equal(t, "open", p.State())

	err := p.Publish(context.Background(), evento())
	assert.ErrorIs(t, err, events.ErrPublisherUnavailable)
	assert.Equal(t, 3, next.calls, "con el circuito abierto no se llama al broker")
	assert.Equal(t, 4, rec.failed)
}

func TestBreaker_ExitoNoAbre(t *testing.T) {
	next := &fallido{}
	rec := &recorder{}
	p := events.NewBreakerPublisher(next, events.DefaultBreakerSettings(), nil, rec)

	require.NoError(t, p.Publish(context.Background(), evento()))
	assert.Equal(t, "closed", p.State())
	assert.Equal(t, 1, rec.ok)
}

func TestNew_SinBrokersEsNoop(t *testing.T) {
	pub, closer := events.New(config.EventsConfig{Topic: "scm.events"}, logger.Nop(), nil)
	assert.IsType(t, events.NopPublisher{}, pub)
	assert.NoError(t, pub.Publish(context.Background(), evento()))
	assert.NoError(t, closer.Close())
}
