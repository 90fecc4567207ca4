package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cms-service/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ContactService сохраняет контакты в CMS
type ContactService struct {
	store DocumentStore
	now   func() time.Time
}

// NewContactService создает сервис контактов
func NewContactService(store DocumentStore) *ContactService {
	return &ContactService{store: store, now: time.Now}
}

// CreateContact создает документ contact; verification - что подтверждено в текущей сессии
func (s *ContactService) CreateContact(ctx context.Context, req domain.CreateContactRequest, verification domain.Verification) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	contact := domain.Contact{
		ID:             privateDocumentID("contact", uuid.NewString()),
		Type:           "contact",
		Name:           strings.TrimSpace(req.Name),
		Phone:          domain.NormalizePhone(req.Phone),
		Email:          strings.TrimSpace(req.Email),
		Message:        req.Message,
		PhoneVerified:  verification.PhoneVerified,
		IdentityUserID: verification.IdentityUserID,
		CreatedAt:      s.now().UTC(),
	}

	id, err := s.store.Create(ctx, contact)
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}
	if id == "" {
		id = contact.ID
	}

	log.WithFields(log.Fields{
		"id":             id,
		"phone_verified": verification.PhoneVerified,
	}).Info("Contact created")

	return id, nil
}
