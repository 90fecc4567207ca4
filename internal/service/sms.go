package service

import (
	"context"
	"errors"
	"fmt"

	"cms-service/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSError - ошибка, которую вернул Twilio
type SMSError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *SMSError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sms provider error (status %d, code %d): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("sms provider error (status %d): %s", e.StatusCode, e.Message)
}

// messageCreator - часть Twilio Messages API, которая нужна отправителю
type messageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender отправляет SMS через Twilio Messages API
type TwilioSender struct {
	messages            messageCreator
	from                string
	messagingServiceSID string
	template            string
}

// NewTwilioSender создает отправителя SMS
func NewTwilioSender(cfg config.SMSConfig) (*TwilioSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio account sid and auth token are required")
	}
	if cfg.From == "" && cfg.MessagingServiceSID == "" {
		return nil, fmt.Errorf("twilio sender number or messaging service sid is required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return newTwilioSender(client.Api, cfg), nil
}

func newTwilioSender(messages messageCreator, cfg config.SMSConfig) *TwilioSender {
	template := cfg.MessageTemplate
	if template == "" {
		template = "Your verification code: %s"
	}

	return &TwilioSender{
		messages:            messages,
		from:                cfg.From,
		messagingServiceSID: cfg.MessagingServiceSID,
		template:            template,
	}
}

// SendVerificationCode отправляет код подтверждения на номер телефона
func (s *TwilioSender) SendVerificationCode(ctx context.Context, phone, code string) error {
	_, err := s.Send(ctx, phone, fmt.Sprintf(s.template, code))
	return err
}

// Send отправляет произвольное сообщение; возвращает SID сообщения
func (s *TwilioSender) Send(ctx context.Context, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("failed to send sms: %w", err)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetBody(body)
	if s.messagingServiceSID != "" {
		params.SetMessagingServiceSid(s.messagingServiceSID)
	} else {
		params.SetFrom(s.from)
	}

	msg, err := s.messages.CreateMessage(params)
	if err != nil {
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			return "", &SMSError{StatusCode: restErr.Status, Code: restErr.Code, Message: restErr.Message}
		}
		return "", fmt.Errorf("failed to send sms: %w", err)
	}

	var sid, status string
	if msg != nil {
		if msg.Sid != nil {
			sid = *msg.Sid
		}
		if msg.Status != nil {
			status = *msg.Status
		}
	}

	log.WithFields(log.Fields{
		"sid":    sid,
		"status": status,
		"to":     to,
	}).Info("SMS queued")

	return sid, nil
}
