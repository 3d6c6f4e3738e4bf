// Package events publica los eventos de dominio (OCs, embarques, conciliaciones) en Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/scm-api/internal/application/ports"
	"github.com/jhoicas/scm-api/pkg/config"
)

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

// KafkaPublisher escribe cada evento como JSON en un único tópico. La clave del mensaje es
// el Subject, así los eventos de un mismo agregado conservan su orden en la partición.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher construye el writer síncrono contra los brokers configurados.
func NewKafkaPublisher(cfg config.EventsConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Publish serializa y envía el evento; espera la confirmación del broker.
func (p *KafkaPublisher) Publish(ctx context.Context, event ports.Event) error {
	msg, err := EncodeMessage(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

// Close vacía el buffer y cierra las conexiones.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// EncodeMessage arma el mensaje Kafka de un evento: cuerpo JSON, clave Subject y
// cabeceras con el tipo y la empresa para filtrar sin deserializar.
func EncodeMessage(event ports.Event) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event %s: %w", event.Type, err)
	}
	return kafka.Message{
		Key:   []byte(event.Subject),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
			{Key: "company-id", Value: []byte(event.CompanyID)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: event.OccurredAt,
	}, nil
}
