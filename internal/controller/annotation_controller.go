package controller

import (
	"course-notes-be/internal/dto"
	"course-notes-be/internal/pkg/logger"
	"course-notes-be/internal/pkg/serverutils"
	"course-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnnotationController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type annotationController struct {
	annotationService service.IAnnotationService
	paginator         serverutils.Paginator
	logger            logger.ILogger
}

func NewAnnotationController(annotationService service.IAnnotationService, paginator serverutils.Paginator, log logger.ILogger) IAnnotationController {
	return &annotationController{
		annotationService: annotationService,
		paginator:         paginator,
		logger:            log,
	}
}

func (c *annotationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/annotations")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/:id", c.Show)
	h.Put("/:id", c.Update)
	h.Delete("/:id", c.Delete)
}

func (c *annotationController) List(ctx *fiber.Ctx) error {
	page, err := c.paginator.Parse(ctx)
	if err != nil {
		return badRequest(ctx, c.logger, err)
	}

	res, err := c.annotationService.List(ctx.UserContext(), dto.ListAnnotationsQuery{
		CourseId: serverutils.QueryParam(ctx, "course_id"),
		User:     serverutils.QueryParam(ctx, "user"),
		Page:     page,
	})
	if err != nil {
		return replyError(ctx, c.logger, err, msgNotFound, msgForbiddenDelete)
	}

	return ctx.JSON(res)
}

func (c *annotationController) Create(ctx *fiber.Ctx) error {
	var payload interface{}
	if err := serverutils.DecodeJSON(ctx, &payload); err != nil {
		return badRequest(ctx, c.logger, err)
	}

	res, err := c.annotationService.Create(ctx.UserContext(), payload)
	if err != nil {
		return replyError(ctx, c.logger, err, msgNotFound, msgForbiddenDelete)
	}

	ctx.Location(collectionPath(ctx) + "/" + res.Id + "/")
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *annotationController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(msgNotFound)
	}

	res, err := c.annotationService.Show(ctx.UserContext(), id, serverutils.QueryParam(ctx, "user"))
	if err != nil {
		return replyError(ctx, c.logger, err, msgNotFound, msgForbiddenDelete)
	}

	return ctx.JSON(res)
}

func (c *annotationController) Update(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(msgNotFoundNoUpdate)
	}

	var req dto.UpdateNoteRequest
	if err := serverutils.DecodeJSON(ctx, &req); err != nil {
		return badRequest(ctx, c.logger, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return badRequest(ctx, c.logger, err)
	}

	res, err := c.annotationService.Update(ctx.UserContext(), id, &req)
	if err != nil {
		return replyError(ctx, c.logger, err, msgNotFoundNoUpdate, msgForbiddenUpdate)
	}

	return ctx.JSON(res)
}

func (c *annotationController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(msgNotFoundNoUpdate)
	}

	user, err := requestUser(ctx)
	if err != nil {
		return badRequest(ctx, c.logger, err)
	}

	if err := c.annotationService.Delete(ctx.UserContext(), id, user); err != nil {
		return replyError(ctx, c.logger, err, msgNotFoundNoUpdate, msgForbiddenDelete)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// collectionPath is the request path without its trailing slash.
func collectionPath(ctx *fiber.Ctx) string {
	path := ctx.Path()
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
