// Package docstore is the document-level storage collaborator for chunked
// blobs: per-key metadata plus an ordered set of chunk documents, with an
// atomic multi-document replace.
package docstore

import (
	"context"
	"time"
)

// Meta describes one stored chunk set.
type Meta struct {
	Key         string    `json:"key" gorm:"column:object_key;primaryKey"`
	TotalChunks int       `json:"total_chunks" gorm:"not null"`
	Encoding    string    `json:"encoding" gorm:"type:text;not null"`
	ContentType string    `json:"content_type" gorm:"type:text;not null;default:''"`
	SizeBytes   int64     `json:"size_bytes" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Meta) TableName() string { return "blob_objects" }

// ChunkDoc is one chunk document. Chunks are immutable once written; a
// resave replaces the full set.
type ChunkDoc struct {
	Key   string `json:"key" gorm:"column:object_key;primaryKey"`
	Index int    `json:"index" gorm:"column:idx;primaryKey;autoIncrement:false"`
	Data  string `json:"data" gorm:"type:text;not null"`
}

func (ChunkDoc) TableName() string { return "blob_chunks" }

// Store is the external document store surface the blob transport relies
// on. Replace must be all-or-nothing: a failure mid-batch may not leave a
// mix of old and new chunks visible.
type Store interface {
	GetMeta(ctx context.Context, key string) (*Meta, error)
	ListChunks(ctx context.Context, key string) ([]ChunkDoc, error)
	Replace(ctx context.Context, key string, meta *Meta, chunks []ChunkDoc) error
	Delete(ctx context.Context, key string) error
}
