package service

import (
	"context"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/entity"
	"course-notes-be/internal/mapper"
	"course-notes-be/internal/repository/specification"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/pkg/search/elastic"
)

// NoteIndex is the part of the external index the service layer relies on.
type NoteIndex interface {
	IndexNote(ctx context.Context, doc elastic.NoteDocument) error
	DeleteNote(ctx context.Context, id string) error
	Search(ctx context.Context, q elastic.Query) ([]elastic.Hit, error)
}

// INoteSearcher finds annotations matching a search query. Both backends
// return rows in the shape of a stored annotation.
type INoteSearcher interface {
	Search(ctx context.Context, query dto.SearchQuery) ([]*dto.NoteResponse, error)
}

type ISearchService interface {
	Search(ctx context.Context, query dto.SearchQuery) (*dto.SearchResponse, error)
}

type dbNoteSearcher struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.NoteMapper
}

func NewDBNoteSearcher(uowFactory unitofwork.RepositoryFactory) INoteSearcher {
	return &dbNoteSearcher{
		uowFactory: uowFactory,
		mapper:     mapper.NewNoteMapper(),
	}
}

// searchPermission is the permission_type a search is restricted to. Without
// a user only course notes are searchable; otherwise the requested permission
// applies, defaulting to personal.
func searchPermission(query dto.SearchQuery) string {
	if query.User == "" {
		return entity.PermissionCourse
	}
	if query.Permission == "" {
		return entity.PermissionPersonal
	}
	return query.Permission
}

// Search filters stored annotations.
func (s *dbNoteSearcher) Search(ctx context.Context, query dto.SearchQuery) ([]*dto.NoteResponse, error) {
	permission := searchPermission(query)

	specs := []specification.Specification{specification.IsAnnotation{}}
	if query.CourseId != "" {
		specs = append(specs, specification.ByCourseID{CourseID: query.CourseId})
	}
	if query.UsageId != "" {
		specs = append(specs, specification.ByUsageID{UsageID: query.UsageId})
	}
	specs = append(specs, specification.VisibleTo{UserID: query.User, Permission: permission})
	if query.Text != "" {
		specs = append(specs, specification.NoteTextOrTagsContains{Query: query.Text})
	}
	specs = append(specs,
		specification.OrderBy{Field: "updated", Desc: true},
		specification.Pagination{Offset: query.Page.Offset, Limit: query.Page.Limit},
	)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	return s.mapper.ToResponses(notes), nil
}

type indexNoteSearcher struct {
	index  NoteIndex
	mapper *mapper.SearchMapper
}

func NewIndexNoteSearcher(index NoteIndex) INoteSearcher {
	return &indexNoteSearcher{
		index:  index,
		mapper: mapper.NewSearchMapper(),
	}
}

func (s *indexNoteSearcher) Search(ctx context.Context, query dto.SearchQuery) ([]*dto.NoteResponse, error) {
	terms := map[string]string{}
	if query.User != "" {
		terms["user"] = query.User
	} else {
		terms["permission_type"] = searchPermission(query)
	}
	if query.CourseId != "" {
		terms["course_id"] = query.CourseId
	}
	if query.UsageId != "" {
		terms["usage_id"] = query.UsageId
	}

	q := elastic.Query{
		Terms: terms,
		Text:  query.Text,
		From:  query.Page.Offset,
		Size:  query.Page.Limit,
	}
	if query.Highlight {
		q.Highlight = &elastic.Highlight{Tag: query.HighlightTag, Class: query.HighlightClass}
	}

	hits, err := s.index.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	return s.mapper.HitsToResponses(hits, q.Highlight), nil
}

type searchService struct {
	db    INoteSearcher
	index INoteSearcher
}

// NewSearchService routes free-text queries to index when it is non-nil and
// everything else to db.
func NewSearchService(db INoteSearcher, index INoteSearcher) ISearchService {
	return &searchService{
		db:    db,
		index: index,
	}
}

func (s *searchService) Search(ctx context.Context, query dto.SearchQuery) (*dto.SearchResponse, error) {
	searcher := s.db
	if s.index != nil && query.Text != "" {
		searcher = s.index
	}

	rows, err := searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	return &dto.SearchResponse{
		Total: len(rows),
		Rows:  rows,
	}, nil
}
