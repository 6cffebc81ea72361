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

type IAnnotationService interface {
	List(ctx context.Context, query dto.ListAnnotationsQuery) ([]*dto.NoteResponse, error)
	Create(ctx context.Context, payload interface{}) (*dto.NoteResponse, error)
	Show(ctx context.Context, id uuid.UUID, user string) (*dto.NoteResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, id uuid.UUID, user string) error
}

type annotationService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	mapper           *mapper.NoteMapper
	mutator          *noteMutator
}

func NewAnnotationService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
) IAnnotationService {
	noteMapper := mapper.NewNoteMapper()
	return &annotationService{
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

func (s *annotationService) List(ctx context.Context, query dto.ListAnnotationsQuery) ([]*dto.NoteResponse, error) {
	if query.CourseId == "" || query.User == "" {
		return nil, ErrMissingParam
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.IsAnnotation{},
		specification.ByCourseID{CourseID: query.CourseId},
		specification.VisibleTo{UserID: query.User},
		specification.OrderBy{Field: "updated", Desc: true},
		specification.Pagination{Offset: query.Page.Offset, Limit: query.Page.Limit},
	)
	if err != nil {
		return nil, err
	}

	return s.mapper.ToResponses(notes), nil
}

func (s *annotationService) Create(ctx context.Context, payload interface{}) (*dto.NoteResponse, error) {
	if fields, ok := payload.(map[string]interface{}); ok {
		if _, hasId := fields["id"]; hasId {
			return nil, ErrIdNotAllowed
		}
	}

	note, err := entity.NewNote(payload)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.mutator.create(ctx, uow, note); err != nil {
		return nil, err
	}

	s.publisherService.Publish(ctx, events.NoteCreated, note)

	return s.mapper.ToResponse(note), nil
}

// Show resolves an annotation visible to user. An empty user skips the
// visibility check entirely.
func (s *annotationService) Show(ctx context.Context, id uuid.UUID, user string) (*dto.NoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.IsAnnotation{},
		specification.VisibleTo{UserID: user},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}

	return s.mapper.ToResponse(note), nil
}

func (s *annotationService) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateNoteRequest) (*dto.NoteResponse, error) {
	return s.mutator.update(ctx, req,
		specification.ByID{ID: id},
		specification.IsAnnotation{},
	)
}

// Delete removes the annotation together with its replies. Only the author
// may delete.
func (s *annotationService) Delete(ctx context.Context, id uuid.UUID, user string) error {
	return s.mutator.delete(ctx, user,
		specification.ByID{ID: id},
		specification.IsAnnotation{},
	)
}
