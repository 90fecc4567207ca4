package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"cms-service/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ClientService регистрирует клиентов и их файлы в CMS
type ClientService struct {
	store DocumentStore
	now   func() time.Time
}

// NewClientService создает сервис клиентов
func NewClientService(store DocumentStore) *ClientService {
	return &ClientService{store: store, now: time.Now}
}

// CreateClientResult - результат регистрации клиента
type CreateClientResult struct {
	ID      string
	FileURL string
}

// CreateClient загружает файл (если есть) и создает документ client, ссылающийся на него
func (s *ClientService) CreateClient(ctx context.Context, req domain.CreateClientRequest, upload *domain.Upload, verification domain.Verification) (*CreateClientResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	client := domain.Client{
		ID:             privateDocumentID("client", uuid.NewString()),
		Type:           "client",
		Name:           strings.TrimSpace(req.Name),
		Phone:          domain.NormalizePhone(req.Phone),
		Email:          strings.TrimSpace(req.Email),
		Company:        strings.TrimSpace(req.Company),
		Comment:        req.Comment,
		Link:           strings.TrimSpace(req.Link),
		PhoneVerified:  verification.PhoneVerified,
		IdentityUserID: verification.IdentityUserID,
		CreatedAt:      s.now().UTC(),
	}

	result := &CreateClientResult{}

	if upload != nil && len(upload.Data) > 0 {
		assetKind, refKind := "files", "file"
		if strings.HasPrefix(upload.ContentType, "image/") {
			assetKind, refKind = "images", "image"
		}

		asset, err := s.store.UploadAsset(ctx, assetKind, upload.Filename, upload.ContentType, bytes.NewReader(upload.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to upload file: %w", err)
		}
		client.File = domain.NewFileReference(refKind, asset.ID)
		result.FileURL = asset.URL
	}

	id, err := s.store.Create(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	if id == "" {
		id = client.ID
	}
	result.ID = id

	log.WithFields(log.Fields{
		"id":       id,
		"has_file": client.File != nil,
		"has_link": client.Link != "",
	}).Info("Client created")

	return result, nil
}
