package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NoteResponse is the external shape shared by every endpoint and both search
// backends. AnnotationFields is nil for replies, which drops its keys entirely.
type NoteResponse struct {
	Id       string  `json:"id"`
	User     string  `json:"user"`
	CourseId string  `json:"course_id"`
	UsageId  string  `json:"usage_id"`
	Text     string  `json:"text"`
	Created  *string `json:"created"`
	Updated  *string `json:"updated"`
	*AnnotationFields
}

type AnnotationFields struct {
	Quote          string          `json:"quote"`
	Ranges         json.RawMessage `json:"ranges"`
	Tags           []string        `json:"tags"`
	PermissionType string          `json:"permission_type"`
}

type UpdateNoteRequest struct {
	User string    `json:"user"`
	Text *string   `json:"text" validate:"required"`
	Tags *[]string `json:"tags" validate:"required"`
}

type DeleteNoteRequest struct {
	User string `json:"user"`
}

type Page struct {
	Offset int
	Limit  int
}

type ListAnnotationsQuery struct {
	CourseId string
	User     string
	Page     Page
}

type SearchQuery struct {
	CourseId       string
	UsageId        string
	User           string
	Text           string
	Permission     string
	Highlight      bool
	HighlightTag   string
	HighlightClass string
	Page           Page
}

type SearchResponse struct {
	Total int             `json:"total"`
	Rows  []*NoteResponse `json:"rows"`
}

// FormatTimestamp renders an ISO-8601 timestamp in UTC, or nil when unset.
func FormatTimestamp(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339Nano)
	return &s
}

// NoteEventMessage travels over the in-process bus to the search indexer.
type NoteEventMessage struct {
	Type      string    `json:"type"`
	NoteId    uuid.UUID `json:"note_id"`
	IsComment bool      `json:"is_comment"`
}
