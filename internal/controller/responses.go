package controller

import (
	"errors"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/entity"
	"course-notes-be/internal/pkg/logger"
	"course-notes-be/internal/pkg/serverutils"
	"course-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	msgNotFound         = "Annotation not found!"
	msgNotFoundNoUpdate = "Annotation not found! No update performed."
	msgForbiddenUpdate  = "You cannot update annotations you didn't create."
	msgForbiddenDelete  = "You cannot delete annotations you didn't create."
)

// replyError maps service errors onto the status codes of the notes API.
// Errors it does not recognise are returned for the error middleware.
func replyError(ctx *fiber.Ctx, log logger.ILogger, err error, notFound, forbidden string) error {
	var vErr *entity.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Debug("NoteController", "Rejected note payload", map[string]interface{}{"error": err.Error()})
		return ctx.SendStatus(fiber.StatusBadRequest)
	case errors.Is(err, service.ErrIdNotAllowed),
		errors.Is(err, service.ErrMissingParam),
		errors.Is(err, service.ErrMissingFields),
		errors.Is(err, serverutils.ErrInvalidPage):
		log.Debug("NoteController", "Rejected request", map[string]interface{}{"error": err.Error()})
		return ctx.SendStatus(fiber.StatusBadRequest)
	case errors.Is(err, service.ErrNoteNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(notFound)
	case errors.Is(err, service.ErrNotAuthor):
		return ctx.Status(fiber.StatusForbidden).JSON(forbidden)
	}
	return err
}

func badRequest(ctx *fiber.Ctx, log logger.ILogger, err error) error {
	log.Debug("NoteController", "Malformed request", map[string]interface{}{"error": err.Error()})
	return ctx.SendStatus(fiber.StatusBadRequest)
}

// requestUser takes the caller from the JSON body and falls back to the query
// string.
func requestUser(ctx *fiber.Ctx) (string, error) {
	var body dto.DeleteNoteRequest
	if err := serverutils.DecodeJSON(ctx, &body); err != nil {
		return "", err
	}
	if body.User != "" {
		return body.User, nil
	}
	return serverutils.QueryParam(ctx, "user"), nil
}
