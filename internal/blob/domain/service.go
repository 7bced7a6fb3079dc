package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not_found")

// Object is stored chunk-set metadata.
type Object struct {
	Key         string    `json:"key"`
	Encoding    string    `json:"encoding"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	TotalChunks int       `json:"total_chunks"`
	CreatedAt   time.Time `json:"created_at"`
}

// Payload is a fully reassembled object.
type Payload struct {
	Object  Object
	Content []byte
}

type SaveRequest struct {
	// Key is minted when empty.
	Key         string
	Content     []byte
	ContentType string
	// Encoding overrides the configured default when set. "none" is
	// text-only: chunks persist in a text column, so binary content must
	// go through "base64".
	Encoding string
}

// Service persists objects whose encoded size may exceed the store's
// per-document ceiling by splitting them into chunks.
type Service interface {
	Save(ctx context.Context, req SaveRequest) (*Object, error)
	Load(ctx context.Context, key string) (*Payload, error)
	Delete(ctx context.Context, key string) error
	NewKey() string
}
