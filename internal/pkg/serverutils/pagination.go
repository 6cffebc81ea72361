package serverutils

import (
	"errors"
	"strconv"

	"course-notes-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

var ErrInvalidPage = errors.New("offset and limit must be non-negative integers")

// Paginator reads offset and limit from the query string. Limit defaults to
// and is capped at Max.
type Paginator struct {
	Max int
}

// NewPaginator clamps a negative max to zero so Limit is never negative,
// which GORM would read as "no limit".
func NewPaginator(max int) Paginator {
	if max < 0 {
		max = 0
	}
	return Paginator{Max: max}
}

func (p Paginator) Parse(ctx *fiber.Ctx) (dto.Page, error) {
	offset, err := nonNegativeInt(ctx.Query("offset"), 0)
	if err != nil {
		return dto.Page{}, err
	}

	limit, err := nonNegativeInt(ctx.Query("limit"), p.Max)
	if err != nil {
		return dto.Page{}, err
	}
	if limit > p.Max {
		limit = p.Max
	}

	return dto.Page{Offset: offset, Limit: limit}, nil
}

func nonNegativeInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, ErrInvalidPage
	}
	return value, nil
}
