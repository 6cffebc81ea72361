package serverutils

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks the struct tags of a decoded request body.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// DecodeJSON reads the request body regardless of its Content-Type. An empty
// body decodes to the zero value.
func DecodeJSON(ctx *fiber.Ctx, v interface{}) error {
	body := ctx.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// QueryParam returns a copy of a query parameter. Empty values count as
// absent.
func QueryParam(ctx *fiber.Ctx, key string) string {
	return strings.Clone(ctx.Query(key))
}
