package domain

import (
	"net/url"
	"time"
)

// CreateClientRequest - запрос на регистрацию клиента (JSON или multipart)
type CreateClientRequest struct {
	Name    string `json:"name" form:"name"`
	Phone   string `json:"phone" form:"phone"`
	Email   string `json:"email" form:"email"`
	Company string `json:"company" form:"company"`
	Comment string `json:"comment" form:"comment"`
	Link    string `json:"link" form:"link"`
}

// Validate проверяет обязательные поля и ссылку
func (r *CreateClientRequest) Validate() error {
	if r.Name == "" {
		return ErrNameRequired
	}
	if r.Phone == "" {
		return ErrPhoneRequired
	}
	if err := ValidatePhone(NormalizePhone(r.Phone)); err != nil {
		return err
	}
	if r.Link != "" {
		u, err := url.Parse(r.Link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidLink
		}
	}
	return nil
}

// Reference - ссылка на другой документ Sanity
type Reference struct {
	Type string `json:"_type,omitempty"`
	Ref  string `json:"_ref"`
}

// FileReference - поле типа file/image, ссылающееся на ассет
type FileReference struct {
	Type  string    `json:"_type"`
	Asset Reference `json:"asset"`
}

// NewFileReference создает ссылку на ассет нужного типа ("file" или "image")
func NewFileReference(kind, assetID string) *FileReference {
	return &FileReference{
		Type:  kind,
		Asset: Reference{Type: "reference", Ref: assetID},
	}
}

// Client - документ client в Sanity
type Client struct {
	ID             string         `json:"_id"`
	Type           string         `json:"_type"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Email          string         `json:"email,omitempty"`
	Company        string         `json:"company,omitempty"`
	Comment        string         `json:"comment,omitempty"`
	Link           string         `json:"link,omitempty"`
	File           *FileReference `json:"file,omitempty"`
	PhoneVerified  bool           `json:"phoneVerified"`
	IdentityUserID string         `json:"identityUserId,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Upload - загруженный пользователем файл
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}
