package kafka_middleware

import (
	"context"
	"time"

	"frontdesk/pkg/kafka"
	"frontdesk/pkg/metrics"
)

func MetricsProducerMiddleware(m *metrics.Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		m.RecordKafkaPublish(msg.Topic, msg.GetEventType(), err)
		return err
	}
}

func MetricsConsumerMiddleware(m *metrics.Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)
		m.RecordKafkaConsume(msg.Topic, msg.GetEventType(), time.Since(start), err)
		return err
	}
}
