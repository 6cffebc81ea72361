package controller

import (
	"course-notes-be/internal/dto"
	"course-notes-be/internal/pkg/logger"
	"course-notes-be/internal/pkg/serverutils"
	"course-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReplyController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type replyController struct {
	replyService service.IReplyService
	paginator    serverutils.Paginator
	logger       logger.ILogger
}

func NewReplyController(replyService service.IReplyService, paginator serverutils.Paginator, log logger.ILogger) IReplyController {
	return &replyController{
		replyService: replyService,
		paginator:    paginator,
		logger:       log,
	}
}

func (c *replyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/annotations/:id/replies")
	h.Get("", c.List)
	h.Post("", c.Create)
	h.Get("/:replyId", c.Show)
	h.Put("/:replyId", c.Update)
	h.Delete("/:replyId", c.Delete)
}

func (c *replyController) List(ctx *fiber.Ctx) error {
	page, err := c.paginator.Parse(ctx)
	if err != nil {
		return badRequest(ctx, c.logger, err)
	}

	parentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		// nothing can reply to an id that is not a note id
		return ctx.JSON([]*dto.NoteResponse{})
	}

	res, err := c.replyService.List(ctx.UserContext(), parentId, page)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *replyController) Create(ctx *fiber.Ctx) error {
	parentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(msgNotFound)
	}

	var payload interface{}
	if err := serverutils.DecodeJSON(ctx, &payload); err != nil {
		return badRequest(ctx, c.logger, err)
	}

	res, err := c.replyService.Create(ctx.UserContext(), parentId, payload)
	if err != nil {
		return replyError(ctx, c.logger, err, msgNotFound, msgForbiddenDelete)
	}

	ctx.Location(collectionPath(ctx) + "/" + res.Id)
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *replyController) Show(ctx *fiber.Ctx) error {
	parentId, id, ok := replyIds(ctx)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(msgNotFound)
	}

	res, err := c.replyService.Show(ctx.UserContext(), parentId, id)
	if err != nil {
		return replyError(ctx, c.logger, err, msgNotFound, msgForbiddenDelete)
	}

	return ctx.JSON(res)
}

func (c *replyController) Update(ctx *fiber.Ctx) error {
	parentId, id, ok := replyIds(ctx)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(msgNotFoundNoUpdate)
	}

	var req dto.UpdateNoteRequest
	if err := serverutils.DecodeJSON(ctx, &req); err != nil {
		return badRequest(ctx, c.logger, err)
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return badRequest(ctx, c.logger, err)
	}

	res, err := c.replyService.Update(ctx.UserContext(), parentId, id, &req)
	if err != nil {
		return replyError(ctx, c.logger, err, msgNotFoundNoUpdate, msgForbiddenUpdate)
	}

	return ctx.JSON(res)
}

func (c *replyController) Delete(ctx *fiber.Ctx) error {
	parentId, id, ok := replyIds(ctx)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(msgNotFoundNoUpdate)
	}

	user, err := requestUser(ctx)
	if err != nil {
		return badRequest(ctx, c.logger, err)
	}

	if err := c.replyService.Delete(ctx.UserContext(), parentId, id, user); err != nil {
		return replyError(ctx, c.logger, err, msgNotFoundNoUpdate, msgForbiddenDelete)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

func replyIds(ctx *fiber.Ctx) (uuid.UUID, uuid.UUID, bool) {
	parentId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(ctx.Params("replyId"))
	if err != nil {
		return uuid.Nil, uuid.Nil, false
	}
	return parentId, id, true
}
