package controller

import (
	"errors"

	"github.com/benbeisheim/minechess-engine/internal/engine"
	"github.com/benbeisheim/minechess-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrSearchNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrNotOwner):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrQueueFull):
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func respondError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("request-failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
