package rest

import (
	"github.com/gofiber/fiber/v2"

	pkgError "github.com/fintari/gramthread/pkg/error"
	"github.com/fintari/gramthread/pkg/utils"
)

// errorResponse maps typed errors to their code and status; anything else is
// a plain 500.
func errorResponse(c *fiber.Ctx, err error) error {
	status := 500
	code := "INTERNAL_SERVER_ERROR"
	if typed, ok := err.(pkgError.GenericError); ok {
		status = typed.StatusCode()
		code = typed.ErrCode()
	}
	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: err.Error(),
	})
}
