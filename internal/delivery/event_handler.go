package delivery

import (
	"github.com/gofiber/fiber/v2"
)

// ListEvents - GET /events[?category=...]
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	events, err := h.events.ListEvents(c.Context(), c.Query("category"))
	if err != nil {
		return respondServiceError(c, err, "Failed to fetch events")
	}
	return respondOK(c, events)
}
