package service

import (
	"context"
	"encoding/json"

	"sado-notes-be/internal/dto"
	"sado-notes-be/internal/pkg/logger"
	"sado-notes-be/internal/repository/specification"
	"sado-notes-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"
)

const consumerModule = "ENRICHMENT"

// IConsumerService runs summary enrichment for notes published on the topic.
type IConsumerService interface {
	Consume(ctx context.Context) error
	// Wait blocks until the subscription is closed and in-flight tasks finish.
	Wait()
}

type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	summaryService ISummaryService
	workers        int
	logger         logger.ILogger
	done           chan struct{}
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	summaryService ISummaryService,
	workers int,
	log logger.ILogger,
) IConsumerService {
	if workers <= 0 {
		workers = 1
	}
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		uowFactory:     uowFactory,
		summaryService: summaryService,
		workers:        workers,
		logger:         log,
		done:           make(chan struct{}),
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		defer close(cs.done)

		var g errgroup.Group
		g.SetLimit(cs.workers)

		for msg := range messages {
			var payload dto.PublishSummarizeNoteMessage
			if err := json.Unmarshal(msg.Payload, &payload); err != nil {
				cs.logger.Error(consumerModule, "Failed to unmarshal summarize message", map[string]interface{}{
					"error":      err.Error(),
					"message_id": msg.UUID,
				})
				msg.Ack()
				continue
			}
			// Ack before the work: enrichment is best effort and a slow model
			// call must not hold the topic.
			msg.Ack()

			// Go blocks while all workers are busy, which bounds the backlog.
			g.Go(func() error {
				cs.enrich(context.WithoutCancel(ctx), payload)
				return nil
			})
		}
		_ = g.Wait()
	}()

	return nil
}

func (cs *consumerService) Wait() {
	<-cs.done
}

func (cs *consumerService) enrich(ctx context.Context, payload dto.PublishSummarizeNoteMessage) {
	defer func() {
		if r := recover(); r != nil {
			cs.logger.Error(consumerModule, "Enrichment task panicked", map[string]interface{}{
				"note_id": payload.NoteId.String(),
				"panic":   r,
			})
		}
	}()

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: payload.NoteId})
	if err != nil {
		cs.logger.Error(consumerModule, "Failed to load note for enrichment", map[string]interface{}{
			"note_id": payload.NoteId.String(),
			"error":   err.Error(),
		})
		return
	}
	if note == nil {
		cs.logger.Debug(consumerModule, "Note deleted before enrichment", map[string]interface{}{
			"note_id": payload.NoteId.String(),
		})
		return
	}
	if note.Revision != payload.Revision {
		cs.logger.Debug(consumerModule, "Skipping stale enrichment", map[string]interface{}{
			"note_id": payload.NoteId.String(),
			"queued":  payload.Revision,
			"current": note.Revision,
		})
		return
	}

	summary := cs.summaryService.Summarize(ctx, note.Content)

	rows, err := uow.NoteRepository().UpdateSummary(ctx, note.Id, payload.Revision, summary)
	if err != nil {
		cs.logger.Error(consumerModule, "Failed to write summary", map[string]interface{}{
			"note_id": payload.NoteId.String(),
			"error":   err.Error(),
		})
		return
	}
	if rows == 0 {
		cs.logger.Debug(consumerModule, "Summary superseded before write", map[string]interface{}{
			"note_id": payload.NoteId.String(),
		})
		return
	}

	cs.logger.Info(consumerModule, "Note summary updated", map[string]interface{}{
		"note_id":  payload.NoteId.String(),
		"revision": payload.Revision,
	})
}
