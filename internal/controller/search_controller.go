package controller

import (
	"strconv"

	"course-notes-be/internal/dto"
	"course-notes-be/internal/pkg/logger"
	"course-notes-be/internal/pkg/serverutils"
	"course-notes-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISearchController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
}

type searchController struct {
	searchService service.ISearchService
	paginator     serverutils.Paginator
	logger        logger.ILogger
}

func NewSearchController(searchService service.ISearchService, paginator serverutils.Paginator, log logger.ILogger) ISearchController {
	return &searchController{
		searchService: searchService,
		paginator:     paginator,
		logger:        log,
	}
}

func (c *searchController) RegisterRoutes(r fiber.Router) {
	r.Get("/search", c.Search)
}

func (c *searchController) Search(ctx *fiber.Ctx) error {
	page, err := c.paginator.Parse(ctx)
	if err != nil {
		return badRequest(ctx, c.logger, err)
	}

	res, err := c.searchService.Search(ctx.UserContext(), dto.SearchQuery{
		CourseId:       serverutils.QueryParam(ctx, "course_id"),
		UsageId:        serverutils.QueryParam(ctx, "usage_id"),
		User:           serverutils.QueryParam(ctx, "user"),
		Text:           serverutils.QueryParam(ctx, "text"),
		Permission:     serverutils.QueryParam(ctx, "perm"),
		Highlight:      isTruthy(ctx.Query("highlight")),
		HighlightTag:   serverutils.QueryParam(ctx, "highlight_tag"),
		HighlightClass: serverutils.QueryParam(ctx, "highlight_class"),
		Page:           page,
	})
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// isTruthy accepts any non-empty flag value except an explicit false.
func isTruthy(raw string) bool {
	if raw == "" {
		return false
	}
	if value, err := strconv.ParseBool(raw); err == nil {
		return value
	}
	return true
}
