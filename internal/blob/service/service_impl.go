package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	blobdomain "github.com/smallbiznis/stockroom/internal/blob/domain"
	"github.com/smallbiznis/stockroom/internal/chunk"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/docstore"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	Clock   clock.Clock
	Store   docstore.Store
	Metrics *obsmetrics.Metrics
}

type Service struct {
	log       *zap.Logger
	clock     clock.Clock
	store     docstore.Store
	metrics   *obsmetrics.Metrics
	chunkSize int
	encoding  string
}

func New(p Params) blobdomain.Service {
	return &Service{
		log:       p.Log.Named("blob.service"),
		clock:     p.Clock,
		store:     p.Store,
		metrics:   p.Metrics,
		chunkSize: p.Config.ChunkSize,
		encoding:  p.Config.BlobEncoding,
	}
}

// Save encodes and splits the content, then atomically replaces whatever
// chunk set was stored under the key before. Old and new chunks are never
// visible together.
func (s *Service) Save(ctx context.Context, req blobdomain.SaveRequest) (*blobdomain.Object, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		key = s.NewKey()
	}
	encoding := req.Encoding
	if encoding == "" {
		encoding = s.encoding
	}

	encoded, err := chunk.Encode(req.Content, encoding)
	if err != nil {
		return nil, err
	}
	chunks, err := chunk.Split(encoded, s.chunkSize)
	if err != nil {
		return nil, err
	}

	meta := &docstore.Meta{
		Key:         key,
		TotalChunks: len(chunks),
		Encoding:    encoding,
		ContentType: strings.TrimSpace(req.ContentType),
		SizeBytes:   int64(len(req.Content)),
		CreatedAt:   s.clock.Now(),
	}

	docs := make([]docstore.ChunkDoc, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, docstore.ChunkDoc{
			Key:   key,
			Index: c.Index,
			Data:  c.Data,
		})
	}

	if err := s.store.Replace(ctx, key, meta, docs); err != nil {
		return nil, err
	}

	s.metrics.BlobsSaved.Inc()
	s.log.Info("blob saved",
		zap.String("key", key),
		zap.Int("total_chunks", meta.TotalChunks),
		zap.Int64("size_bytes", meta.SizeBytes),
	)
	return toObject(meta), nil
}

// Load fetches the chunk set in index order, verifies it is complete, and
// reassembles the original content.
func (s *Service) Load(ctx context.Context, key string) (*blobdomain.Payload, error) {
	meta, err := s.store.GetMeta(ctx, key)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, blobdomain.ErrNotFound
	}

	docs, err := s.store.ListChunks(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, blobdomain.ErrNotFound
	}

	chunks := make([]chunk.Chunk, 0, len(docs))
	for _, doc := range docs {
		chunks = append(chunks, chunk.Chunk{Index: doc.Index, Data: doc.Data})
	}

	joined, err := chunk.Join(chunks)
	if err != nil {
		return nil, err
	}
	content, err := chunk.Decode(joined, meta.Encoding)
	if err != nil {
		return nil, err
	}

	return &blobdomain.Payload{
		Object:  *toObject(meta),
		Content: content,
	}, nil
}

// Delete removes metadata and chunks; deleting an absent key is a no-op.
func (s *Service) Delete(ctx context.Context, key string) error {
	return s.store.Delete(ctx, key)
}

// NewKey mints a time-ordered key so stored objects list in creation order.
func (s *Service) NewKey() string {
	return ulid.MustNew(ulid.Timestamp(s.clock.Now()), ulid.DefaultEntropy()).String()
}

func toObject(meta *docstore.Meta) *blobdomain.Object {
	return &blobdomain.Object{
		Key:         meta.Key,
		Encoding:    meta.Encoding,
		ContentType: meta.ContentType,
		SizeBytes:   meta.SizeBytes,
		TotalChunks: meta.TotalChunks,
		CreatedAt:   meta.CreatedAt,
	}
}
