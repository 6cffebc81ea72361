package service

import (
	"context"
	"time"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/entity"
	"course-notes-be/internal/mapper"
	"course-notes-be/internal/repository/specification"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/pkg/events"

	"github.com/google/uuid"
)

// noteMutator holds the update and delete flow shared by annotations and
// replies. Callers pass the specs that resolve the target note.
type noteMutator struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	mapper           *mapper.NoteMapper
}

func (m *noteMutator) update(ctx context.Context, req *dto.UpdateNoteRequest, specs ...specification.Specification) (*dto.NoteResponse, error) {
	if req.Text == nil || req.Tags == nil {
		return nil, ErrMissingFields
	}

	uow := m.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, ErrNoteNotFound
	}
	if note.UserId != req.User {
		return nil, ErrNotAuthor
	}

	now := time.Now().UTC()
	note.Text = *req.Text
	note.SetTags(*req.Tags)
	note.Updated = &now

	if err := note.Validate(); err != nil {
		return nil, err
	}

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	m.publisherService.Publish(ctx, events.NoteUpdated, note)

	return m.mapper.ToResponse(note), nil
}

func (m *noteMutator) delete(ctx context.Context, user string, specs ...specification.Specification) error {
	uow := m.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	note, err := uow.NoteRepository().FindOne(ctx, specs...)
	if err != nil {
		return err
	}
	if note == nil {
		return ErrNoteNotFound
	}
	if note.UserId != user {
		return ErrNotAuthor
	}

	if err := uow.NoteRepository().Delete(ctx, note.Id); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	m.publisherService.Publish(ctx, events.NoteDeleted, note)
	return nil
}

// create validates, stamps and persists a new note. Announcing it is left to
// the caller so it can happen after commit.
func (m *noteMutator) create(ctx context.Context, uow unitofwork.UnitOfWork, note *entity.Note) error {
	if err := note.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	note.Id = uuid.New()
	note.Created = &now
	note.Updated = &now

	return uow.NoteRepository().Create(ctx, note)
}
