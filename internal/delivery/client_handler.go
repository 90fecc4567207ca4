package delivery

import (
	"fmt"
	"io"
	"strings"

	"cms-service/internal/domain"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// CreateClient - POST /clients (JSON или multipart/form-data с полем file)
func (h *Handler) CreateClient(c *fiber.Ctx) error {
	var req domain.CreateClientRequest

	if err := c.BodyParser(&req); err != nil {
		log.WithError(err).Debug("Failed to parse CreateClient request")
		return respondBadRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return respondBadRequest(c, err.Error())
	}

	upload, err := readUpload(c, "file")
	if err != nil {
		log.WithError(err).Warn("Failed to read uploaded file")
		return respondBadRequest(c, "Invalid file upload")
	}

	res, err := h.clients.CreateClient(c.Context(), req, upload, h.verification(c, req.Phone))
	if err != nil {
		return respondServiceError(c, err, "Failed to create client")
	}

	return respondCreated(c, domain.CreatedResponse{
		Success: true,
		ID:      res.ID,
		FileURL: res.FileURL,
		Message: "Client created successfully",
	})
}

// readUpload читает файл из multipart формы; nil, если файла нет
func readUpload(c *fiber.Ctx, field string) (*domain.Upload, error) {
	if !strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		return nil, nil
	}

	fh, err := c.FormFile(field)
	if err != nil {
		// поле отсутствует
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}

	return &domain.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Data:        data,
	}, nil
}
