package delivery

import (
	"context"
	"encoding/json"
	"time"

	"cms-service/internal/domain"
	"cms-service/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	log "github.com/sirupsen/logrus"
)

const (
	verifiedPhoneKey  = "verified_phone"
	identityUserIDKey = "identity_user_id"
)

// EventLister - чтение событий
type EventLister interface {
	ListEvents(ctx context.Context, category string) ([]json.RawMessage, error)
}

// ContactCreator - создание контактов
type ContactCreator interface {
	CreateContact(ctx context.Context, req domain.CreateContactRequest, verification domain.Verification) (string, error)
}

// ClientCreator - регистрация клиентов
type ClientCreator interface {
	CreateClient(ctx context.Context, req domain.CreateClientRequest, upload *domain.Upload, verification domain.Verification) (*service.CreateClientResult, error)
}

// CodeVerifier - выдача и проверка одноразовых кодов
type CodeVerifier interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) (string, error)
	TTL() time.Duration
}

type Handler struct {
	events   EventLister
	contacts ContactCreator
	clients  ClientCreator
	otp      CodeVerifier
	sessions *session.Store
}

func NewHandler(events EventLister, contacts ContactCreator, clients ClientCreator, otp CodeVerifier, sessions *session.Store) *Handler {
	return &Handler{
		events:   events,
		contacts: contacts,
		clients:  clients,
		otp:      otp,
		sessions: sessions,
	}
}

// Register вешает маршруты на router
func (h *Handler) Register(r fiber.Router) {
	r.Get("/ping", h.Ping)
	r.Get("/events", h.ListEvents)
	r.Post("/contacts", h.CreateContact)
	r.Post("/clients", h.CreateClient)
	r.Post("/otp/send", h.SendCode)
	r.Post("/otp/verify", h.VerifyCode)
}

// Ping - проверка, что сервер жив
func (h *Handler) Ping(c *fiber.Ctx) error {
	return respondOK(c, fiber.Map{"message": "Server is running! 🚀"})
}

// verification - подтвержден ли этот номер кодом в текущей сессии
func (h *Handler) verification(c *fiber.Ctx, phone string) domain.Verification {
	if h.sessions == nil || phone == "" {
		return domain.Verification{}
	}
	sess, err := h.sessions.Get(c)
	if err != nil {
		log.WithError(err).Warn("Failed to load session")
		return domain.Verification{}
	}
	verified, _ := sess.Get(verifiedPhoneKey).(string)
	if verified == "" || verified != domain.NormalizePhone(phone) {
		return domain.Verification{}
	}
	userID, _ := sess.Get(identityUserIDKey).(string)
	return domain.Verification{PhoneVerified: true, IdentityUserID: userID}
}

// rememberVerification сохраняет подтвержденный номер и id пользователя в сессии
func (h *Handler) rememberVerification(c *fiber.Ctx, phone, userID string) {
	if h.sessions == nil {
		return
	}
	sess, err := h.sessions.Get(c)
	if err != nil {
		log.WithError(err).Warn("Failed to load session")
		return
	}
	sess.Set(verifiedPhoneKey, domain.NormalizePhone(phone))
	if userID != "" {
		sess.Set(identityUserIDKey, userID)
	} else {
		sess.Delete(identityUserIDKey)
	}
	if err := sess.Save(); err != nil {
		log.WithError(err).Warn("Failed to save session")
	}
}
