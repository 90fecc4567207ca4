package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"cms-service/internal/config"

	log "github.com/sirupsen/logrus"
)

// APIError - ошибка, которую вернул Sanity API
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sanity api error (status %d): %s", e.StatusCode, e.Message)
}

// Asset - загруженный в Sanity ассет
type Asset struct {
	ID  string `json:"_id"`
	URL string `json:"url"`
}

// Mutation - одна мутация в транзакции Sanity
type Mutation map[string]any

// SanityClient - клиент HTTP API Sanity (GROQ запросы, мутации, ассеты)
type SanityClient struct {
	apiURL     string
	queryURL   string
	dataset    string
	apiVersion string
	token      string
	httpClient *http.Client
}

// SanityOption настраивает SanityClient
type SanityOption func(*SanityClient)

// WithSanityBaseURL переопределяет хост API (используется в тестах)
func WithSanityBaseURL(baseURL string) SanityOption {
	return func(c *SanityClient) {
		c.apiURL = baseURL
		c.queryURL = baseURL
	}
}

// WithSanityHTTPClient задает http.Client
func WithSanityHTTPClient(hc *http.Client) SanityOption {
	return func(c *SanityClient) {
		c.httpClient = hc
	}
}

// NewSanityClient создает клиент для проекта и датасета из конфигурации
func NewSanityClient(cfg config.SanityConfig, opts ...SanityOption) (*SanityClient, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, fmt.Errorf("sanity project id and dataset are required")
	}

	apiURL := fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	queryURL := apiURL
	// CDN используется только для чтения и только без токена
	if cfg.UseCDN && cfg.Token == "" {
		queryURL = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
	}

	c := &SanityClient{
		apiURL:     apiURL,
		queryURL:   queryURL,
		dataset:    cfg.Dataset,
		apiVersion: cfg.APIVersion,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	log.WithFields(log.Fields{
		"project":     cfg.ProjectID,
		"dataset":     cfg.Dataset,
		"api_version": cfg.APIVersion,
		"cdn":         queryURL != apiURL,
	}).Info("Sanity client initialized")

	return c, nil
}

// Fetch выполняет GROQ запрос и декодирует поле result в out
func (c *SanityClient) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", query)
	for k, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode query param %s: %w", k, err)
		}
		values.Set("$"+k, string(encoded))
	}

	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?%s", c.queryURL, c.apiVersion, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create query request: %w", err)
	}

	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	if err := c.do(req, &resp); err != nil {
		return err
	}

	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Result, out); err != nil {
		return fmt.Errorf("failed to decode query result: %w", err)
	}
	return nil
}

// Create создает документ; возвращает его _id
func (c *SanityClient) Create(ctx context.Context, doc any) (string, error) {
	ids, err := c.Mutate(ctx, Mutation{"create": doc})
	if err != nil {
		return "", err
	}
	return firstID(ids), nil
}

// CreateOrReplace создает документ или полностью заменяет существующий с тем же _id
func (c *SanityClient) CreateOrReplace(ctx context.Context, doc any) (string, error) {
	ids, err := c.Mutate(ctx, Mutation{"createOrReplace": doc})
	if err != nil {
		return "", err
	}
	return firstID(ids), nil
}

// Delete удаляет документ по _id
func (c *SanityClient) Delete(ctx context.Context, id string) error {
	_, err := c.Mutate(ctx, Mutation{"delete": map[string]any{"id": id}})
	return err
}

// DeleteByQuery удаляет все документы, подходящие под GROQ запрос; возвращает их _id
func (c *SanityClient) DeleteByQuery(ctx context.Context, query string, params map[string]any) ([]string, error) {
	del := map[string]any{"query": query}
	if len(params) > 0 {
		del["params"] = params
	}
	return c.Mutate(ctx, Mutation{"delete": del})
}

// Mutate выполняет транзакцию из мутаций; возвращает _id затронутых документов
func (c *SanityClient) Mutate(ctx context.Context, mutations ...Mutation) ([]string, error) {
	body, err := json.Marshal(map[string]any{"mutations": mutations})
	if err != nil {
		return nil, fmt.Errorf("failed to encode mutations: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v%s/data/mutate/%s?returnIds=true&visibility=sync", c.apiURL, c.apiVersion, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create mutate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp struct {
		TransactionID string `json:"transactionId"`
		Results       []struct {
			ID        string `json:"id"`
			Operation string `json:"operation"`
		} `json:"results"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}

	log.WithFields(log.Fields{
		"transaction": resp.TransactionID,
		"ids":         ids,
	}).Debug("Sanity mutation committed")

	return ids, nil
}

// UploadAsset загружает файл; kind - "files" или "images"
func (c *SanityClient) UploadAsset(ctx context.Context, kind, filename, contentType string, data io.Reader) (*Asset, error) {
	if kind != "files" && kind != "images" {
		return nil, fmt.Errorf("unknown asset kind %q", kind)
	}

	values := url.Values{}
	if filename != "" {
		values.Set("filename", filename)
	}
	endpoint := fmt.Sprintf("%s/v%s/assets/%s/%s?%s", c.apiURL, c.apiVersion, kind, c.dataset, values.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, data)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	var resp struct {
		Document Asset `json:"document"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	if resp.Document.ID == "" {
		return nil, fmt.Errorf("sanity returned asset without id")
	}

	log.WithFields(log.Fields{
		"asset_id": resp.Document.ID,
		"filename": filename,
	}).Info("Asset uploaded to Sanity")

	return &resp.Document, nil
}

func (c *SanityClient) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sanity request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read sanity response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: parseSanityError(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse sanity response: %w", err)
	}
	return nil
}

// parseSanityError достает описание ошибки из тела ответа Sanity.
// Встречаются форматы {"error":{"description":...}} и {"error":"...","message":"..."}.
func parseSanityError(body []byte) string {
	var structured struct {
		Error struct {
			Description string `json:"description"`
			Type        string `json:"type"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Description != "" {
		return structured.Error.Description
	}

	var flat struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &flat); err == nil {
		if flat.Message != "" {
			return flat.Message
		}
		if flat.Error != "" {
			return flat.Error
		}
	}

	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}

func firstID(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}
