package delivery

import (
	"cms-service/internal/domain"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// CreateContact - POST /contacts
func (h *Handler) CreateContact(c *fiber.Ctx) error {
	var req domain.CreateContactRequest

	if err := c.BodyParser(&req); err != nil {
		log.WithError(err).Debug("Failed to parse CreateContact request")
		return respondBadRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return respondBadRequest(c, err.Error())
	}

	id, err := h.contacts.CreateContact(c.Context(), req, h.verification(c, req.Phone))
	if err != nil {
		return respondServiceError(c, err, "Failed to create contact")
	}

	return respondCreated(c, domain.CreatedResponse{
		Success: true,
		ID:      id,
		Message: "Contact created successfully",
	})
}
