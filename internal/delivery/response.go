package delivery

import (
	"errors"

	"cms-service/internal/domain"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ErrorResponse - стандартный формат ошибки
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondWithError - вспомогательная функция для отправки ошибок
func respondWithError(c *fiber.Ctx, status int, message string, details ...string) error {
	resp := ErrorResponse{
		Error: message,
	}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	return c.Status(status).JSON(resp)
}

// respondBadRequest - ошибка валидации (400)
func respondBadRequest(c *fiber.Ctx, message string) error {
	return respondWithError(c, fiber.StatusBadRequest, message)
}

// respondInternalError - внутренняя ошибка (500)
func respondInternalError(c *fiber.Ctx, message string, details string) error {
	return respondWithError(c, fiber.StatusInternalServerError, message, details)
}

// respondServiceError - 400 для ошибок валидации и кода, 500 для остальных
func respondServiceError(c *fiber.Ctx, err error, message string) error {
	if isClientError(err) {
		return respondBadRequest(c, err.Error())
	}

	log.WithError(err).WithField("path", c.Path()).Error(message)
	return respondInternalError(c, message, err.Error())
}

// respondOK - успешный ответ (200)
func respondOK(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(data)
}

// respondCreated - успешное создание (201)
func respondCreated(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}

func isClientError(err error) bool {
	for _, target := range []error{
		domain.ErrNameRequired,
		domain.ErrPhoneRequired,
		domain.ErrCodeRequired,
		domain.ErrInvalidPhone,
		domain.ErrInvalidLink,
		domain.ErrCodeNotFound,
		domain.ErrCodeExpired,
		domain.ErrCodeMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
