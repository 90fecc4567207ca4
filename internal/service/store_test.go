package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"cms-service/internal/domain"
)

type uploadCall struct {
	kind        string
	filename    string
	contentType string
	data        []byte
}

// fakeStore хранит документы в памяти; коды выбираются по параметрам запроса
type fakeStore struct {
	mu      sync.Mutex
	codes   map[string]domain.OTPRecord
	created []any
	uploads []uploadCall
	fetched []string
	deletes []string

	// afterFetch вызывается после чтения, до возврата результата вызывающему;
	// имитирует параллельную запись между чтением и удалением
	afterFetch func()

	fetchResult any
	fetchErr    error
	createErr   error
	replaceErr  error
	deleteErr   error
	uploadErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{codes: make(map[string]domain.OTPRecord)}
}

func (f *fakeStore) Fetch(_ context.Context, query string, params map[string]any, out any) error {
	f.mu.Lock()
	f.fetched = append(f.fetched, query)
	if f.fetchErr != nil {
		f.mu.Unlock()
		return f.fetchErr
	}

	var result any = f.fetchResult
	if id, ok := params["id"].(string); ok {
		if rec, found := f.codes[id]; found {
			result = rec
		} else {
			result = nil
		}
	}
	hook := f.afterFetch
	f.mu.Unlock()

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeStore) Create(_ context.Context, doc any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, doc)
	return docID(doc), nil
}

func (f *fakeStore) CreateOrReplace(_ context.Context, doc any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.replaceErr != nil {
		return "", f.replaceErr
	}
	rec, ok := doc.(domain.OTPRecord)
	if !ok {
		return "", errors.New("unexpected document type")
	}
	f.codes[rec.ID] = rec
	return rec.ID, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.codes, id)
	return nil
}

func (f *fakeStore) DeleteByQuery(_ context.Context, query string, params map[string]any) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, query)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}

	var ids []string
	for id, rec := range f.codes {
		if want, ok := params["id"].(string); ok && rec.ID != want {
			continue
		}
		if want, ok := params["code"].(string); ok && rec.Code != want {
			continue
		}
		if strings.Contains(query, "now()") && !rec.ExpiresAt.Before(time.Now()) {
			continue
		}
		delete(f.codes, id)
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) UploadAsset(_ context.Context, kind, filename, contentType string, data io.Reader) (*Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	f.uploads = append(f.uploads, uploadCall{kind: kind, filename: filename, contentType: contentType, data: b})
	return &Asset{ID: "file-abc-pdf", URL: "https://cdn.sanity.io/files/p/d/abc.pdf"}, nil
}

func (f *fakeStore) code(id string) (domain.OTPRecord, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.codes[id]
	return rec, ok
}

func (f *fakeStore) put(rec domain.OTPRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[rec.ID] = rec
}

func docID(doc any) string {
	switch d := doc.(type) {
	case domain.Contact:
		return d.ID
	case domain.Client:
		return d.ID
	}
	return ""
}

var _ DocumentStore = (*fakeStore)(nil)
