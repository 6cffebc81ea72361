package specification

import (
	"strings"

	"course-notes-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IsAnnotation keeps standalone notes only.
type IsAnnotation struct{}

func (s IsAnnotation) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NULL")
}

// IsComment keeps replies only.
type IsComment struct{}

func (s IsComment) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NOT NULL")
}

type ByParentID struct {
	ParentID uuid.UUID
}

func (s ByParentID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id = ?", s.ParentID)
}

type ByCourseID struct {
	CourseID string
}

func (s ByCourseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_id = ?", s.CourseID)
}

type ByUsageID struct {
	UsageID string
}

func (s ByUsageID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("usage_id = ?", s.UsageID)
}

// NoteTextOrTagsContains is a case-insensitive substring match on the note
// body or its serialized tags. LIKE wildcards in the query are escaped. The
// cast keeps it working when tags is a jsonb column.
type NoteTextOrTagsContains struct {
	Query string
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (s NoteTextOrTagsContains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(s.Query)) + "%"
	return db.Where(`(LOWER(text) LIKE ? ESCAPE '\' OR LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\')`, pattern, pattern)
}

// VisibleTo is the single visibility predicate.
//
//   - Permission set: exactly that permission_type, narrowed to UserID when given.
//   - Permission empty, UserID set: course notes plus the caller's personal notes.
//   - Both empty: no restriction.
type VisibleTo struct {
	UserID     string
	Permission string
}

func (s VisibleTo) Apply(db *gorm.DB) *gorm.DB {
	if s.Permission != "" {
		db = db.Where("permission_type = ?", s.Permission)
		if s.UserID != "" {
			db = db.Where("user_id = ?", s.UserID)
		}
		return db
	}
	if s.UserID == "" {
		return db
	}
	return db.Where("(permission_type = ? OR (permission_type = ? AND user_id = ?))",
		entity.PermissionCourse, entity.PermissionPersonal, s.UserID)
}
