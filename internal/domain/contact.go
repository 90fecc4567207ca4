package domain

import "time"

// CreateContactRequest - запрос на создание контакта
type CreateContactRequest struct {
	Name    string `json:"name" form:"name"`
	Phone   string `json:"phone" form:"phone"`
	Email   string `json:"email" form:"email"`
	Message string `json:"message" form:"message"`
}

// Validate проверяет обязательные поля
func (r *CreateContactRequest) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if r.Phone == "" {
		return ErrPhoneRequired
	}
	return ValidatePhone(NormalizePhone(r.Phone))
}

// Contact - документ contact в Sanity
type Contact struct {
	ID             string    `json:"_id"`
	Type           string    `json:"_type"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email,omitempty"`
	Message        string    `json:"message,omitempty"`
	PhoneVerified  bool      `json:"phoneVerified"`
	IdentityUserID string    `json:"identityUserId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Verification - результат подтверждения телефона в текущей сессии
type Verification struct {
	PhoneVerified  bool
	IdentityUserID string
}

// CreatedResponse - ответ на создание документа
type CreatedResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id"`
	FileURL string `json:"file_url,omitempty"`
	Message string `json:"message"`
}
