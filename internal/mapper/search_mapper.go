package mapper

import (
	"encoding/json"
	"strings"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/entity"
	"course-notes-be/pkg/search/elastic"
)

type SearchMapper struct{}

func NewSearchMapper() *SearchMapper {
	return &SearchMapper{}
}

// ToDocument builds the index document for an annotation. Data combines the
// body and tags so one match query covers both.
func (m *SearchMapper) ToDocument(n *entity.Note) elastic.NoteDocument {
	tags := n.TagList()

	doc := elastic.NoteDocument{
		Id:             n.Id.String(),
		User:           n.UserId,
		CourseId:       n.CourseId,
		UsageId:        n.UsageId,
		Quote:          n.Quote,
		Text:           n.Text,
		Ranges:         n.Ranges,
		Tags:           n.Tags,
		PermissionType: n.PermissionType,
		Data:           strings.TrimSpace(n.Text + " " + strings.Join(tags, " ")),
	}
	if created := dto.FormatTimestamp(n.Created); created != nil {
		doc.Created = *created
	}
	if updated := dto.FormatTimestamp(n.Updated); updated != nil {
		doc.Updated = *updated
	}
	return doc
}

// HitToResponse renders a search hit in the same shape as a stored
// annotation. Highlighted text and tags replace the raw values; documents
// indexed before tags existed fall back to an empty list. hl is the
// highlight the query asked for, or nil.
func (m *SearchMapper) HitToResponse(hit elastic.Hit, hl *elastic.Highlight) *dto.NoteResponse {
	src := hit.Source

	ranges := json.RawMessage(src.Ranges)
	if !json.Valid(ranges) {
		ranges = json.RawMessage("[]")
	}

	tags := decodeTags(src.Tags)
	text := src.Text

	if fragment, ok := hit.HighlightedField("text"); ok {
		text = fragment
	}
	if fragment, ok := hit.HighlightedField("tags"); ok {
		// the highlighted tags field is still serialized JSON, and a class
		// attribute puts bare quotes inside its strings
		if hl != nil {
			fragment = strings.ReplaceAll(fragment, hl.PreTag(), jsonEscaped(hl.PreTag()))
		}
		var highlighted []string
		if err := json.Unmarshal([]byte(fragment), &highlighted); err == nil && highlighted != nil {
			tags = highlighted
		}
	}

	return &dto.NoteResponse{
		Id:       hit.Id,
		User:     src.User,
		CourseId: src.CourseId,
		UsageId:  src.UsageId,
		Text:     text,
		Created:  optionalString(src.Created),
		Updated:  optionalString(src.Updated),
		AnnotationFields: &dto.AnnotationFields{
			Quote:          src.Quote,
			Ranges:         ranges,
			Tags:           tags,
			PermissionType: src.PermissionType,
		},
	}
}

func (m *SearchMapper) HitsToResponses(hits []elastic.Hit, hl *elastic.Highlight) []*dto.NoteResponse {
	responses := make([]*dto.NoteResponse, len(hits))
	for i, h := range hits {
		responses[i] = m.HitToResponse(h, hl)
	}
	return responses
}

// jsonEscaped returns s as it must appear inside a JSON string literal.
func jsonEscaped(s string) string {
	data, _ := json.Marshal(s)
	return string(data[1 : len(data)-1])
}

func decodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
