package delivery

import (
	"cms-service/internal/domain"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// SendCode - POST /otp/send: генерирует код и отправляет SMS
func (h *Handler) SendCode(c *fiber.Ctx) error {
	var req domain.SendCodeRequest

	if err := c.BodyParser(&req); err != nil {
		log.WithError(err).Debug("Failed to parse SendCode request")
		return respondBadRequest(c, "Invalid request body")
	}

	if req.Phone == "" {
		return respondBadRequest(c, domain.ErrPhoneRequired.Error())
	}

	if err := h.otp.SendCode(c.Context(), req.Phone); err != nil {
		return respondServiceError(c, err, "Failed to send verification code")
	}

	return respondOK(c, domain.SendCodeResponse{
		Success:   true,
		Message:   "Verification code sent successfully",
		ExpiresIn: int(h.otp.TTL().Seconds()),
	})
}

// VerifyCode - POST /otp/verify: проверяет код
func (h *Handler) VerifyCode(c *fiber.Ctx) error {
	var req domain.VerifyCodeRequest

	if err := c.BodyParser(&req); err != nil {
		log.WithError(err).Debug("Failed to parse VerifyCode request")
		return respondBadRequest(c, "Invalid request body")
	}

	if req.Phone == "" {
		return respondBadRequest(c, domain.ErrPhoneRequired.Error())
	}

	if req.Code == "" {
		return respondBadRequest(c, domain.ErrCodeRequired.Error())
	}

	userID, err := h.otp.VerifyCode(c.Context(), req.Phone, req.Code)
	if err != nil {
		return respondServiceError(c, err, "Failed to verify code")
	}

	h.rememberVerification(c, req.Phone, userID)

	return respondOK(c, domain.VerifyCodeResponse{
		Success: true,
		Message: "Phone verified successfully",
		UserID:  userID,
	})
}
