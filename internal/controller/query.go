package controller

import (
	"collectify-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func queryUUID(ctx *fiber.Ctx, key string) (uuid.UUID, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return uuid.Nil, apperror.BadRequest(key + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.BadRequest("Invalid " + key)
	}
	return id, nil
}

func parseBody(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	return nil
}
