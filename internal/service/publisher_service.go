package service

import (
	"context"
	"encoding/json"
	"time"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/entity"
	"course-notes-be/internal/pkg/logger"
	"course-notes-be/pkg/events"
	pktNats "course-notes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// IPublisherService announces note lifecycle changes. Delivery is best
// effort: failures are logged and never surface to the caller.
type IPublisherService interface {
	Publish(ctx context.Context, eventType string, note *entity.Note)
}

type publisherService struct {
	topicName      string
	publisher      message.Publisher
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewPublisherService(
	topicName string,
	publisher message.Publisher,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
) IPublisherService {
	return &publisherService{
		topicName:      topicName,
		publisher:      publisher,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *publisherService) Publish(ctx context.Context, eventType string, note *entity.Note) {
	payload, err := json.Marshal(dto.NoteEventMessage{
		Type:      eventType,
		NoteId:    note.Id,
		IsComment: note.IsComment(),
	})
	if err != nil {
		s.logger.Error("PublisherService", "Failed to marshal note event", map[string]interface{}{"error": err.Error(), "note_id": note.Id.String()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", eventType)
	if err := s.publisher.Publish(s.topicName, msg); err != nil {
		s.logger.Warn("PublisherService", "Failed to publish note event to bus", map[string]interface{}{"error": err.Error(), "type": eventType})
	}

	if s.eventPublisher == nil {
		return
	}

	data := map[string]interface{}{
		"note_id":   note.Id.String(),
		"user_id":   note.UserId,
		"course_id": note.CourseId,
		"usage_id":  note.UsageId,
	}
	if note.ParentId != nil {
		data["parent_id"] = note.ParentId.String()
	}

	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("PublisherService", "Failed to publish note event to NATS", map[string]interface{}{"error": err.Error(), "type": eventType})
	}
}
