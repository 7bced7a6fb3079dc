package service

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	blobdomain "github.com/smallbiznis/stockroom/internal/blob/domain"
	"github.com/smallbiznis/stockroom/internal/chunk"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/docstore"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
)

func newTestService(t *testing.T, chunkSize int) (blobdomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&docstore.Meta{}, &docstore.ChunkDoc{}))

	fake := clock.NewFakeClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		Config: config.Config{
			ChunkSize:    chunkSize,
			BlobEncoding: "base64",
		},
		Log:     zap.NewNop(),
		Clock:   fake,
		Store:   docstore.NewGormStore(db),
		Metrics: obsmetrics.New(obsmetrics.NewRegistry()),
	})
	return svc, db, fake
}

func TestSaveLoadRoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t, 16)

	content := bytes.Repeat([]byte("inventory photo "), 10)
	obj, err := svc.Save(context.Background(), blobdomain.SaveRequest{
		Key:         "roundtrip-1",
		Content:     content,
		ContentType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "roundtrip-1", obj.Key)
	assert.Equal(t, int64(len(content)), obj.SizeBytes)
	assert.Greater(t, obj.TotalChunks, 1)

	payload, err := svc.Load(context.Background(), "roundtrip-1")
	require.NoError(t, err)
	assert.Equal(t, content, payload.Content)
	assert.Equal(t, "image/jpeg", payload.Object.ContentType)
	assert.Equal(t, obj.TotalChunks, payload.Object.TotalChunks)
}

func TestSaveMintsKeyWhenEmpty(t *testing.T) {
	svc, _, _ := newTestService(t, 64)

	obj, err := svc.Save(context.Background(), blobdomain.SaveRequest{
		Content: []byte("no key supplied"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, obj.Key)

	payload, err := svc.Load(context.Background(), obj.Key)
	require.NoError(t, err)
	assert.Equal(t, []byte("no key supplied"), payload.Content)
}

func TestResaveReplacesChunkSet(t *testing.T) {
	svc, db, _ := newTestService(t, 8)

	big := bytes.Repeat([]byte("0123456789"), 20)
	_, err := svc.Save(context.Background(), blobdomain.SaveRequest{Key: "replace-1", Content: big})
	require.NoError(t, err)

	small := []byte("tiny")
	obj, err := svc.Save(context.Background(), blobdomain.SaveRequest{Key: "replace-1", Content: small})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&docstore.ChunkDoc{}).Where("object_key = ?", "replace-1").Count(&count).Error)
	assert.Equal(t, int64(obj.TotalChunks), count)

	payload, err := svc.Load(context.Background(), "replace-1")
	require.NoError(t, err)
	assert.Equal(t, small, payload.Content)
}

func TestLoadUnknownKey(t *testing.T) {
	svc, _, _ := newTestService(t, 64)

	_, err := svc.Load(context.Background(), "never-saved")
	assert.ErrorIs(t, err, blobdomain.ErrNotFound)
}

func TestLoadReportsMissingChunk(t *testing.T) {
	svc, db, _ := newTestService(t, 8)

	content := bytes.Repeat([]byte("abcdefgh"), 6)
	obj, err := svc.Save(context.Background(), blobdomain.SaveRequest{Key: "gappy-1", Content: content})
	require.NoError(t, err)
	require.Greater(t, obj.TotalChunks, 2)

	require.NoError(t, db.Exec(`DELETE FROM blob_chunks WHERE object_key = ? AND idx = ?`, "gappy-1", 1).Error)

	_, err = svc.Load(context.Background(), "gappy-1")
	var missing *chunk.MissingChunkError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Index)
}

func TestDeleteIsIdempotent(t *testing.T) {
	svc, _, _ := newTestService(t, 64)

	_, err := svc.Save(context.Background(), blobdomain.SaveRequest{Key: "delete-1", Content: []byte("payload")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "delete-1"))
	require.NoError(t, svc.Delete(context.Background(), "delete-1"))

	_, err = svc.Load(context.Background(), "delete-1")
	assert.ErrorIs(t, err, blobdomain.ErrNotFound)
}

func TestSaveWithoutEncoding(t *testing.T) {
	svc, _, _ := newTestService(t, 1000)

	content := []byte("plain text payload")
	obj, err := svc.Save(context.Background(), blobdomain.SaveRequest{
		Key:      "plain-1",
		Content:  content,
		Encoding: chunk.EncodingNone,
	})
	require.NoError(t, err)
	assert.Equal(t, chunk.EncodingNone, obj.Encoding)

	payload, err := svc.Load(context.Background(), "plain-1")
	require.NoError(t, err)
	assert.Equal(t, content, payload.Content)
}

func TestNewKeysAreUnique(t *testing.T) {
	svc, _, _ := newTestService(t, 64)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key := svc.NewKey()
		require.False(t, seen[key], fmt.Sprintf("duplicate key %s", key))
		seen[key] = true
	}
}

func TestNewKeysSortByMintTime(t *testing.T) {
	svc, _, clk := newTestService(t, 64)

	// ULIDs lead with the timestamp, so keys minted later must sort after
	// keys minted earlier.
	prev := svc.NewKey()
	for i := 0; i < 5; i++ {
		clk.Advance(time.Second)
		next := svc.NewKey()
		assert.Less(t, prev, next)
		prev = next
	}
}
