package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// OTPSweeper периодически удаляет просроченные коды.
// Таймеры OTPService теряются при рестарте, поэтому нужна страховочная очистка.
type OTPSweeper struct {
	store DocumentStore
	cron  *cron.Cron
}

// NewOTPSweeper создает очистку по cron-расписанию (5 полей: минуты ... дни недели)
func NewOTPSweeper(store DocumentStore, schedule string) (*OTPSweeper, error) {
	s := &OTPSweeper{
		store: store,
		cron:  cron.New(),
	}

	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		if _, err := s.Sweep(ctx); err != nil {
			log.WithError(err).Error("OTP sweep failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule '%s': %w", schedule, err)
	}

	return s, nil
}

// Sweep удаляет все просроченные коды; возвращает их число.
// expiresAt хранится с наносекундами, поэтому сравнение идет через dateTime(),
// а не лексикографически по строкам.
func (s *OTPSweeper) Sweep(ctx context.Context) (int, error) {
	ids, err := s.store.DeleteByQuery(ctx,
		`*[_type == $type && dateTime(expiresAt) < dateTime(now())]`,
		map[string]any{"type": otpDocumentType},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired codes: %w", err)
	}

	if len(ids) > 0 {
		log.WithField("count", len(ids)).Info("Expired verification codes swept")
	}
	return len(ids), nil
}

// Start запускает расписание
func (s *OTPSweeper) Start() {
	s.cron.Start()
}

// Stop останавливает расписание и ждет завершения текущей очистки
func (s *OTPSweeper) Stop() {
	<-s.cron.Stop().Done()
}
