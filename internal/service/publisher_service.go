package service

import (
	"context"
	"errors"

	"sado-notes-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// ErrEnrichmentQueueFull is returned when every publish slot is taken.
var ErrEnrichmentQueueFull = errors.New("enrichment queue is full")

type IPublisherService interface {
	Publish(ctx context.Context, payload []byte) error
}

type publisherService struct {
	publisher message.Publisher
	topicName string
	slots     chan struct{}
	logger    logger.ILogger
}

// NewPublisherService hands messages to publisher from at most queueSize
// goroutines. The publisher is expected to block until the consumer takes
// the message, so the slots are the queue bound.
func NewPublisherService(publisher message.Publisher, topicName string, queueSize int, log logger.ILogger) IPublisherService {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
		slots:     make(chan struct{}, queueSize),
		logger:    log,
	}
}

// Publish never waits on the consumer. It fails fast with
// ErrEnrichmentQueueFull instead.
func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	select {
	case p.slots <- struct{}{}:
	default:
		return ErrEnrichmentQueueFull
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(context.WithoutCancel(ctx))

	go func() {
		defer func() { <-p.slots }()
		if err := p.publisher.Publish(p.topicName, msg); err != nil {
			p.logger.Warn(consumerModule, "Failed to hand summarize message to consumer", map[string]interface{}{
				"message_id": msg.UUID,
				"error":      err.Error(),
			})
		}
	}()
	return nil
}
