package domain

import "time"

// OTPRecord - документ verificationCode в Sanity, один на номер телефона
type OTPRecord struct {
	ID        string    `json:"_id"`
	Type      string    `json:"_type"`
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired возвращает true, если срок действия кода истек
func (r *OTPRecord) Expired(now time.Time) bool {
	return !r.ExpiresAt.IsZero() && now.After(r.ExpiresAt)
}

// SendCodeRequest - запрос на отправку кода
type SendCodeRequest struct {
	Phone string `json:"phone" form:"phone"`
}

// SendCodeResponse - ответ на отправку кода
type SendCodeResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ExpiresIn int    `json:"expires_in"`
}

// VerifyCodeRequest - запрос на проверку кода
type VerifyCodeRequest struct {
	Phone string `json:"phone" form:"phone"`
	Code  string `json:"code" form:"code"`
}

// VerifyCodeResponse - ответ на проверку кода
type VerifyCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}
