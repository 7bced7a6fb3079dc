package docstore

import (
	"context"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewGormStore backs the document store with the relational database; a DB
// transaction provides the atomic-batch guarantee Replace and Delete need.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

var Module = fx.Module("docstore",
	fx.Provide(NewGormStore),
)

func (s *gormStore) GetMeta(ctx context.Context, key string) (*Meta, error) {
	var meta Meta
	err := s.db.WithContext(ctx).Raw(
		`SELECT object_key, total_chunks, encoding, content_type, size_bytes, created_at
		 FROM blob_objects WHERE object_key = ?`,
		key,
	).Scan(&meta).Error
	if err != nil {
		return nil, err
	}
	if meta.Key == "" {
		return nil, nil
	}
	return &meta, nil
}

func (s *gormStore) ListChunks(ctx context.Context, key string) ([]ChunkDoc, error) {
	var chunks []ChunkDoc
	err := s.db.WithContext(ctx).Raw(
		`SELECT object_key, idx, data FROM blob_chunks WHERE object_key = ? ORDER BY idx ASC`,
		key,
	).Scan(&chunks).Error
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

func (s *gormStore) Replace(ctx context.Context, key string, meta *Meta, chunks []ChunkDoc) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM blob_chunks WHERE object_key = ?`, key).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM blob_objects WHERE object_key = ?`, key).Error; err != nil {
			return err
		}

		err := tx.Exec(
			`INSERT INTO blob_objects (object_key, total_chunks, encoding, content_type, size_bytes, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			meta.Key,
			meta.TotalChunks,
			meta.Encoding,
			meta.ContentType,
			meta.SizeBytes,
			meta.CreatedAt,
		).Error
		if err != nil {
			return err
		}

		for _, c := range chunks {
			err = tx.Exec(
				`INSERT INTO blob_chunks (object_key, idx, data) VALUES (?, ?, ?)`,
				c.Key,
				c.Index,
				c.Data,
			).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *gormStore) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM blob_chunks WHERE object_key = ?`, key).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM blob_objects WHERE object_key = ?`, key).Error
	})
}
