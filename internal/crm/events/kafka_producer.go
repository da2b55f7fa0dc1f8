// Package events publishes CRM change events to Kafka. Mutations are
// fire-and-forget: the producer buffers events on a channel and a
// single loop drains it, so the request path never blocks on the broker.
package events

import (
	"context"
	"encoding/json"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	CompanyCreated  EventType = "company_created"
	CompanyUpdated  EventType = "company_updated"
	CompanyDeleted  EventType = "company_deleted"
	ContactCreated  EventType = "contact_created"
	ContactUpdated  EventType = "contact_updated"
	ContactDeleted  EventType = "contact_deleted"
	DealCreated     EventType = "deal_created"
	DealUpdated     EventType = "deal_updated"
	DealDeleted     EventType = "deal_deleted"
	ActivityCreated EventType = "activity_created"
	ActivityUpdated EventType = "activity_updated"
	ActivityDeleted EventType = "activity_deleted"
)

// Event is the published payload: the entity's id keys the message so
// all events for one record land on the same partition.
type Event struct {
	Type     EventType
	EntityID string
	Payload  interface{}
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *zap.Logger
	closeChan chan struct{}
}

// NewProducer dials the first broker to ensure the topic exists
// (retrying with exponential backoff while Kafka comes up), then starts
// the drain loop.
func NewProducer(brokers []string, logger *zap.Logger, topic string) (*Producer, error) {
	err := backoff.Retry(func() error {
		conn, err := kafka.Dial("tcp", brokers[0])
		if err != nil {
			return err
		}
		defer conn.Close()

		return conn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     3,
			ReplicationFactor: 1,
		})
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
			Topic:    topic,
		},
		events:    make(chan Event, 1000),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}

	go p.eventLoop()
	return p, nil
}

// Produce enqueues an event without blocking; when the buffer is full
// the event is dropped and logged.
func (p *Producer) Produce(eventType EventType, entityID string, payload interface{}) {
	select {
	case p.events <- Event{Type: eventType, EntityID: entityID, Payload: payload}:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(eventType)),
			zap.String("entity_id", entityID),
		)
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.String("entity_id", event.EntityID),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EntityID),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("entity_id", event.EntityID),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
