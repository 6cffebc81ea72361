package service

import (
	"context"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/entity"
	"course-notes-be/internal/mapper"
	"course-notes-be/internal/repository/specification"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/pkg/events"

	"github.com/google/uuid"
)

// IReplyService manages comments scoped under one annotation. Replies carry
// no visibility of their own; the parent's URL scopes them.
type IReplyService interface {
	List(ctx context.Context, parentId uuid.UUID, page dto.Page) ([]*dto.NoteResponse, error)
	Create(ctx context.Context, parentId uuid.UUID, payload interface{}) (*dto.NoteResponse, error)
	Show(ctx context.Context, parentId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error)
	Update(ctx context.Context, parentId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, parentId uuid.UUID, id uuid.UUID, user string) error
}

type replyService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	mapper           *mapper.NoteMapper
	mutator          *noteMutator
}

func NewReplyService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IReplyService {
	noteMapper := mapper.NewNoteMapper()
	return &replyService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		mapper:           noteMapper,
		mutator: &noteMutator{
			uowFactory:       uowFactory,
			publisherService: publisherService,
			mapper:           noteMapper,
		},
	}
}

func (s *replyService) List(ctx context.Context, parentId uuid.UUID, page dto.Page) ([]*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.IsComment{},
		specification.ByParentID{ParentID: parentId},
		specification.OrderBy{Field: "created", Desc: true},
		specification.Pagination{Offset: page.Offset, Limit: page.Limit},
	)
	if err != nil {
		return nil, err
	}

	return s.mapper.ToResponses(notes), nil
}

// Create reads the parent and inserts the reply in one transaction so a
// concurrently deleted parent cannot leave an orphan behind.
func (s *replyService) Create(ctx context.Context, parentId uuid.UUID, payload interface{}) (*dto.NoteResponse, error) {
	if fields, ok := payload.(map[string]interface{}); ok {
		if _, hasId := fields["id"]; hasId {
			return nil, ErrIdNotAllowed
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	parent, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: parentId},
		specification.IsAnnotation{},
	)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, ErrNoteNotFound
	}

	reply, err := entity.NewNote(payload)
	if err != nil {
		return nil, err
	}
	reply.ParentId = &parent.Id
	reply.CourseId = parent.CourseId
	reply.UsageId = parent.UsageId

	if err := s.mutator.create(ctx, uow, reply); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.publisherService.Publish(ctx, events.NoteCreated, reply)

	return s.mapper.ToResponse(reply), nil
}

func (s *replyService) Show(ctx context.Context, parentId uuid.UUID, id uuid.UUID) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, replySpecs(parentId, id)...)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	return s.mapper.ToResponse(note), nil
}

func (s *replyService) Update(ctx context.Context, parentId uuid.UUID, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	return s.mutator.update(ctx, req, replySpecs(parentId, id)...)
}

func (s *replyService) Delete(ctx context.Context, parentId uuid.UUID, id uuid.UUID, user string) error {
	return s.mutator.delete(ctx, user, replySpecs(parentId, id)...)
}

func replySpecs(parentId uuid.UUID, id uuid.UUID) []specification.Specification {
	return []specification.Specification{
		specification.ByID{ID: id},
		specification.ByParentID{ParentID: parentId},
		specification.IsComment{},
	}
}
