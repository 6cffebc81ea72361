package service

import "errors"

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrNotAuthor     = errors.New("user is not the author of the note")
	ErrIdNotAllowed  = errors.New("id must not be supplied")
	ErrMissingParam  = errors.New("missing required parameter")
	ErrMissingFields = errors.New("text and tags are required")
)
