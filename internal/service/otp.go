package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"

	"cms-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

const (
	otpDocumentType = "verificationCode"
	otpCodeLength   = 4
)

// CodeSender доставляет код на телефон
type CodeSender interface {
	SendVerificationCode(ctx context.Context, phone, code string) error
}

// IdentityRegistrar заводит пользователя с подтвержденным телефоном во внешней системе
type IdentityRegistrar interface {
	EnsureUser(ctx context.Context, phone string) (string, error)
}

// OTPService - выдача, доставка и проверка одноразовых кодов.
// Коды хранятся в CMS по одному документу на номер телефона.
type OTPService struct {
	store     DocumentStore
	sender    CodeSender
	registrar IdentityRegistrar
	ttl       time.Duration
	now       func() time.Time
	generate  func() (string, error)

	mu     sync.Mutex
	timers map[string]*pendingDeletion // ключ - _id документа
}

type pendingDeletion struct {
	timer *time.Timer
	code  string
}

// NewOTPService создает сервис одноразовых кодов
func NewOTPService(store DocumentStore, sender CodeSender, ttl time.Duration) *OTPService {
	return &OTPService{
		store:    store,
		sender:   sender,
		ttl:      ttl,
		now:      time.Now,
		generate: func() (string, error) { return generateRandomCode(otpCodeLength) },
		timers:   make(map[string]*pendingDeletion),
	}
}

// WithIdentityRegistrar включает зеркалирование подтвержденных телефонов
func (s *OTPService) WithIdentityRegistrar(r IdentityRegistrar) *OTPService {
	s.registrar = r
	return s
}

// TTL возвращает время жизни кода
func (s *OTPService) TTL() time.Duration {
	return s.ttl
}

// SendCode генерирует код, сохраняет его, отправляет SMS и планирует удаление
func (s *OTPService) SendCode(ctx context.Context, phone string) error {
	phone = domain.NormalizePhone(phone)
	if phone == "" {
		return domain.ErrPhoneRequired
	}
	if err := domain.ValidatePhone(phone); err != nil {
		return err
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	now := s.now().UTC()
	record := domain.OTPRecord{
		ID:        otpDocumentID(phone),
		Type:      otpDocumentType,
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	// Новый код заменяет предыдущий для этого номера
	if _, err := s.store.CreateOrReplace(ctx, record); err != nil {
		return fmt.Errorf("failed to save code: %w", err)
	}

	if err := s.sender.SendVerificationCode(ctx, phone, code); err != nil {
		if _, delErr := s.deleteIfCode(context.WithoutCancel(ctx), record.ID, code); delErr != nil {
			log.WithError(delErr).WithField("phone", phone).Warn("Failed to remove undelivered code")
		}
		return fmt.Errorf("failed to send code: %w", err)
	}

	s.scheduleDeletion(record.ID, code)

	log.WithFields(log.Fields{
		"phone":      phone,
		"expires_at": record.ExpiresAt,
	}).Info("Verification code sent")

	return nil
}

// VerifyCode сверяет код. При совпадении документ удаляется, при несовпадении остается.
// Возвращает id пользователя во внешней системе, если зеркалирование включено.
func (s *OTPService) VerifyCode(ctx context.Context, phone, code string) (string, error) {
	phone = domain.NormalizePhone(phone)
	if phone == "" {
		return "", domain.ErrPhoneRequired
	}
	if code == "" {
		return "", domain.ErrCodeRequired
	}

	id := otpDocumentID(phone)

	var record *domain.OTPRecord
	query := `*[_type == $type && _id == $id][0]{_id, _type, phone, code, expiresAt, createdAt}`
	if err := s.store.Fetch(ctx, query, map[string]any{"type": otpDocumentType, "id": id}, &record); err != nil {
		return "", fmt.Errorf("failed to load code: %w", err)
	}
	if record == nil {
		return "", domain.ErrCodeNotFound
	}

	// Удаление условное: между чтением и удалением параллельный SendCode
	// мог записать новый код, и его трогать нельзя.
	if record.Expired(s.now()) {
		if _, err := s.deleteIfCode(ctx, record.ID, record.Code); err != nil {
			log.WithError(err).WithField("phone", phone).Warn("Failed to delete expired code")
		}
		s.cancelTimerIfCode(record.ID, record.Code)
		return "", domain.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		log.WithField("phone", phone).Info("Verification code mismatch")
		return "", domain.ErrCodeMismatch
	}

	deleted, err := s.deleteIfCode(ctx, record.ID, record.Code)
	if err != nil {
		return "", fmt.Errorf("failed to delete code: %w", err)
	}
	if !deleted {
		// код уже использован или заменен новым
		log.WithField("phone", phone).Info("Verification code consumed concurrently")
		return "", domain.ErrCodeNotFound
	}
	s.cancelTimerIfCode(record.ID, record.Code)

	log.WithField("phone", phone).Info("Phone verified")

	if s.registrar == nil {
		return "", nil
	}

	userID, err := s.registrar.EnsureUser(ctx, phone)
	if err != nil {
		log.WithError(err).WithField("phone", phone).Warn("Failed to mirror verified phone")
		return "", nil
	}
	return userID, nil
}

// Stop отменяет все запланированные удаления
func (s *OTPService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.timers {
		p.timer.Stop()
		delete(s.timers, id)
	}
}

// pending возвращает число запланированных удалений
func (s *OTPService) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *OTPService) scheduleDeletion(id, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.timers[id]; ok {
		old.timer.Stop()
	}

	p := &pendingDeletion{code: code}
	p.timer = time.AfterFunc(s.ttl, func() {
		s.mu.Lock()
		if s.timers[id] == p {
			delete(s.timers, id)
		}
		s.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		deleted, err := s.deleteIfCode(ctx, id, code)
		if err != nil {
			log.WithError(err).WithField("id", id).Error("Failed to delete expired code")
			return
		}
		if deleted {
			log.WithField("id", id).Debug("Expired code deleted")
		}
	})
	s.timers[id] = p
}

// cancelTimerIfCode снимает таймер, только если он запланирован для этого кода
func (s *OTPService) cancelTimerIfCode(id, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.timers[id]; ok && p.code == code {
		p.timer.Stop()
		delete(s.timers, id)
	}
}

// deleteIfCode удаляет документ, только если в нем все еще этот код
func (s *OTPService) deleteIfCode(ctx context.Context, id, code string) (bool, error) {
	ids, err := s.store.DeleteByQuery(ctx,
		`*[_type == $type && _id == $id && code == $code]`,
		map[string]any{"type": otpDocumentType, "id": id, "code": code},
	)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func otpDocumentID(phone string) string {
	return privateDocumentID(otpDocumentType, domain.PhoneDigits(phone))
}

// generateRandomCode генерирует случайный числовой код заданной длины
func generateRandomCode(length int) (string, error) {
	const digits = "0123456789"
	code := make([]byte, length)

	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		code[i] = digits[num.Int64()]
	}

	return string(code), nil
}
