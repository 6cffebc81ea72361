package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	PermissionPersonal = "personal"
	PermissionCourse   = "course"
)

// Note is either a standalone annotation (ParentId == nil) or a comment on one.
// Ranges and Tags hold serialized JSON lists.
type Note struct {
	Id             uuid.UUID
	UserId         string `validate:"required,max=255"`
	CourseId       string `validate:"required,max=255"`
	UsageId        string `validate:"required,max=255"`
	ParentId       *uuid.UUID
	Quote          string
	Text           string
	Ranges         string `validate:"required,json_list_nonempty"`
	Tags           string `validate:"required,json_string_list"`
	PermissionType string `validate:"required,oneof=personal course"`
	Created        *time.Time
	Updated        *time.Time
}

func (n *Note) IsComment() bool {
	return n.ParentId != nil
}

// NewNote builds an unsaved note from a decoded JSON payload. The incoming
// "user" key becomes UserId; id, parent_id and timestamps are never taken
// from the payload.
func NewNote(payload interface{}) (*Note, error) {
	fields, ok := payload.(map[string]interface{})
	if !ok {
		return nil, NewValidationError("Note must be a dictionary.")
	}
	if len(fields) == 0 {
		return nil, NewValidationError("Note must have a body.")
	}

	ranges, err := listField(fields, "ranges")
	if err != nil {
		return nil, err
	}
	if len(ranges) < 1 {
		return nil, NewValidationError("Note must contain at least one range.")
	}

	tags, err := listField(fields, "tags")
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []interface{}{}
	}

	rangesJSON, err := json.Marshal(ranges)
	if err != nil {
		return nil, NewValidationError("ranges: " + err.Error())
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, NewValidationError("tags: " + err.Error())
	}

	note := &Note{
		Ranges:         string(rangesJSON),
		Tags:           string(tagsJSON),
		PermissionType: PermissionPersonal,
	}

	var violations []string
	assign := func(key string, dst *string) {
		raw, present := fields[key]
		if !present || raw == nil {
			return
		}
		s, ok := raw.(string)
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: must be a string", key))
			return
		}
		*dst = s
	}

	assign("user", &note.UserId)
	assign("course_id", &note.CourseId)
	assign("usage_id", &note.UsageId)
	assign("quote", &note.Quote)
	assign("text", &note.Text)
	assign("permission_type", &note.PermissionType)

	if len(violations) > 0 {
		return nil, NewValidationError(violations...)
	}

	return note, nil
}

func listField(fields map[string]interface{}, key string) ([]interface{}, error) {
	raw, present := fields[key]
	if !present || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, NewValidationError(fmt.Sprintf("%s: must be a list", key))
	}
	return list, nil
}

// Validate runs the full field validation and reports every violation at once.
func (n *Note) Validate() error {
	if err := noteValidator.Struct(n); err != nil {
		return validationErrorFrom(err)
	}
	return nil
}

// SetTags serializes a tag list into the stored form.
func (n *Note) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	data, _ := json.Marshal(tags)
	n.Tags = string(data)
}

// TagList decodes the stored tags, falling back to an empty list.
func (n *Note) TagList() []string {
	tags := []string{}
	if n.Tags == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(n.Tags), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
