package mapper

import (
	"encoding/json"
	"time"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/entity"
	"course-notes-be/internal/model"

	"gorm.io/datatypes"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var created *time.Time
	if !n.Created.IsZero() {
		t := n.Created
		created = &t
	}

	var updated *time.Time
	if !n.Updated.IsZero() {
		t := n.Updated
		updated = &t
	}

	return &entity.Note{
		Id:             n.Id,
		UserId:         n.UserId,
		CourseId:       n.CourseId,
		UsageId:        n.UsageId,
		ParentId:       n.ParentId,
		Quote:          n.Quote,
		Text:           n.Text,
		Ranges:         string(n.Ranges),
		Tags:           string(n.Tags),
		PermissionType: n.PermissionType,
		Created:        created,
		Updated:        updated,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var created, updated time.Time
	if n.Created != nil {
		created = *n.Created
	}
	if n.Updated != nil {
		updated = *n.Updated
	}

	tags := n.Tags
	if tags == "" {
		tags = "[]"
	}

	return &model.Note{
		Id:             n.Id,
		UserId:         n.UserId,
		CourseId:       n.CourseId,
		UsageId:        n.UsageId,
		ParentId:       n.ParentId,
		Quote:          n.Quote,
		Text:           n.Text,
		Ranges:         datatypes.JSON(n.Ranges),
		Tags:           datatypes.JSON(tags),
		PermissionType: n.PermissionType,
		Created:        created,
		Updated:        updated,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

// ToResponse renders the external representation of a note. Comments carry
// no quote, ranges, tags or permission_type.
func (m *NoteMapper) ToResponse(n *entity.Note) *dto.NoteResponse {
	if n == nil {
		return nil
	}

	res := &dto.NoteResponse{
		Id:       n.Id.String(),
		User:     n.UserId,
		CourseId: n.CourseId,
		UsageId:  n.UsageId,
		Text:     n.Text,
		Created:  dto.FormatTimestamp(n.Created),
		Updated:  dto.FormatTimestamp(n.Updated),
	}

	if !n.IsComment() {
		ranges := json.RawMessage(n.Ranges)
		if !json.Valid(ranges) {
			ranges = json.RawMessage("[]")
		}
		res.AnnotationFields = &dto.AnnotationFields{
			Quote:          n.Quote,
			Ranges:         ranges,
			Tags:           n.TagList(),
			PermissionType: n.PermissionType,
		}
	}

	return res
}

func (m *NoteMapper) ToResponses(notes []*entity.Note) []*dto.NoteResponse {
	responses := make([]*dto.NoteResponse, len(notes))
	for i, n := range notes {
		responses[i] = m.ToResponse(n)
	}
	return responses
}
