package contract

import (
	"context"

	"course-notes-be/internal/entity"
	"course-notes-be/internal/repository/specification"

	"github.com/google/uuid"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error // also removes the note's replies
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	FindInBatches(ctx context.Context, batchSize int, fn func(batch []*entity.Note) error, specs ...specification.Specification) error
}
