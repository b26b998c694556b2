// Package events fans checkout outcomes out to Kafka and to the customer's
// mailbox.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"storefront/internal/checkout"
	"storefront/internal/logger"
	"storefront/internal/metric"
	"storefront/internal/trace"
)

// KafkaPublisher writes every checkout event to one topic, keyed by order id
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	log      *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, log *zap.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return newKafkaPublisher(producer, topic, log), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		log:      logger.OrNop(log).Named("kafka"),
	}
}

func (p *KafkaPublisher) Notify(ctx context.Context, e checkout.Event) {
	if err := p.Publish(ctx, e); err != nil {
		p.log.Error("publish checkout event", zap.Error(err), zap.Int64("order_id", e.OrderID), trace.Field(ctx))
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e checkout.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		metric.EventsPublished.WithLabelValues("kafka", "error").Inc()
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("outcome"), Value: []byte(e.Outcome)},
		},
	}
	if e.OrderID != 0 {
		msg.Key = sarama.StringEncoder(strconv.FormatInt(e.OrderID, 10))
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		metric.EventsPublished.WithLabelValues("kafka", "error").Inc()
		return fmt.Errorf("send to %s: %w", p.topic, err)
	}
	metric.EventsPublished.WithLabelValues("kafka", "ok").Inc()
	p.log.Debug("checkout event sent",
		zap.String("outcome", string(e.Outcome)),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
		trace.Field(ctx),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
