package service

import (
	"context"
	"io"
)

// DocumentStore - операции документного хранилища, которые использует сервис
type DocumentStore interface {
	Fetch(ctx context.Context, query string, params map[string]any, out any) error
	Create(ctx context.Context, doc any) (string, error)
	CreateOrReplace(ctx context.Context, doc any) (string, error)
	Delete(ctx context.Context, id string) error
	DeleteByQuery(ctx context.Context, query string, params map[string]any) ([]string, error)
	UploadAsset(ctx context.Context, kind, filename, contentType string, data io.Reader) (*Asset, error)
}

var _ DocumentStore = (*SanityClient)(nil)

// privateDocumentID строит id вида "<prefix>.<key>". Документы с точкой в id
// не отдаются анонимным запросам даже в публичном датасете.
func privateDocumentID(prefix, key string) string {
	return prefix + "." + key
}
