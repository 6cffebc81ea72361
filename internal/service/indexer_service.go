package service

import (
	"context"
	"encoding/json"
	"time"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/mapper"
	"course-notes-be/internal/pkg/logger"
	"course-notes-be/internal/repository/specification"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// defaultIndexRetry backs off for roughly half a minute before an event is
// given up on. cmd/reindex repairs whatever was dropped.
var defaultIndexRetry = middleware.Retry{
	MaxRetries:      5,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     10 * time.Second,
	Multiplier:      2,
}

// IIndexerService keeps the external index in step with stored annotations.
type IIndexerService interface {
	Consume(ctx context.Context) error
}

type indexerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	index      NoteIndex
	mapper     *mapper.SearchMapper
	retry      middleware.Retry
	logger     logger.ILogger
}

func NewIndexerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	index NoteIndex,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		index:      index,
		mapper:     mapper.NewSearchMapper(),
		retry:      defaultIndexRetry,
		logger:     log,
	}
}

func (s *indexerService) Consume(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (s *indexerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.NoteEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("IndexerService", "Failed to unmarshal note event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // retrying a malformed payload cannot succeed
		return
	}

	// only annotations are searchable
	if payload.IsComment {
		msg.Ack()
		return
	}

	// the retry backoff waits on the message context
	msg.SetContext(ctx)
	handler := s.retry.Middleware(func(msg *message.Message) ([]*message.Message, error) {
		return nil, s.sync(ctx, payload)
	})

	// gochannel redelivers a Nack immediately, so give up after the retries
	if _, err := handler(msg); err != nil {
		s.logger.Error("IndexerService", "Dropped note event after retries", map[string]interface{}{
			"error":   err.Error(),
			"note_id": payload.NoteId.String(),
			"type":    payload.Type,
		})
	}

	msg.Ack()
}

func (s *indexerService) sync(ctx context.Context, payload dto.NoteEventMessage) error {
	id := payload.NoteId.String()

	if payload.Type == events.NoteDeleted {
		return s.index.DeleteNote(ctx, id)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: payload.NoteId},
		specification.IsAnnotation{},
	)
	if err != nil {
		return err
	}
	if note == nil {
		// deleted before this event was handled
		s.logger.Debug("IndexerService", "Note vanished before indexing", map[string]interface{}{"note_id": id})
		return s.index.DeleteNote(ctx, id)
	}

	s.logger.Debug("IndexerService", "Indexing note", map[string]interface{}{"note_id": id, "type": payload.Type})
	return s.index.IndexNote(ctx, s.mapper.ToDocument(note))
}
