package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"course-notes-be/internal/entity"
	"course-notes-be/internal/pkg/testdb"
	"course-notes-be/internal/repository/unitofwork"
	"course-notes-be/pkg/search/elastic"

	"github.com/google/uuid"
)

type publishedEvent struct {
	Type   string
	NoteId uuid.UUID
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, eventType string, note *entity.Note) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Type: eventType, NoteId: note.Id})
}

func (p *recordingPublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

var errIndexDown = errors.New("index unavailable")

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]elastic.NoteDocument
	queries []elastic.Query
	hits    []elastic.Hit
	err     error
	// failures makes the next writes fail before err is consulted
	failures int
	writes   int
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]elastic.NoteDocument{}}
}

func (f *fakeIndex) IndexNote(ctx context.Context, doc elastic.NoteDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.failures > 0 {
		f.failures--
		return errIndexDown
	}
	if f.err != nil {
		return f.err
	}
	f.docs[doc.Id] = doc
	return nil
}

func (f *fakeIndex) DeleteNote(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, q elastic.Query) ([]elastic.Hit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.hits, f.err
}

func (f *fakeIndex) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *fakeIndex) doc(id string) (elastic.NoteDocument, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[id]
	return doc, ok
}

type fixture struct {
	uowFactory  unitofwork.RepositoryFactory
	publisher   *recordingPublisher
	annotations IAnnotationService
	replies     IReplyService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	uowFactory := unitofwork.NewRepositoryFactory(testdb.New(t))
	publisher := &recordingPublisher{}
	return &fixture{
		uowFactory:  uowFactory,
		publisher:   publisher,
		annotations: NewAnnotationService(uowFactory, publisher),
		replies:     NewReplyService(uowFactory, publisher),
	}
}

func annotationPayload(user, perm string) map[string]interface{} {
	return map[string]interface{}{
		"user":            user,
		"course_id":       "c1",
		"usage_id":        "x1",
		"quote":           "quoted text",
		"text":            "note by " + user,
		"ranges":          []interface{}{map[string]interface{}{"start": float64(0), "end": float64(5)}},
		"tags":            []interface{}{"alpha"},
		"permission_type": perm,
	}
}

func replyPayload(user, text string) map[string]interface{} {
	return map[string]interface{}{
		"user":   user,
		"text":   text,
		"ranges": []interface{}{map[string]interface{}{"start": float64(0), "end": float64(1)}},
	}
}
