package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ORDER_TAX_RATE", "BLOB_CHUNK_SIZE", "BLOB_ENCODING",
		"HTTP_ADDR", "DATABASE_TYPE", "SEED_DEMO_DATA",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.16")))
	assert.Equal(t, 900_000, cfg.ChunkSize)
	assert.Equal(t, "base64", cfg.BlobEncoding)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ORDER_TAX_RATE", "0.05")
	t.Setenv("BLOB_CHUNK_SIZE", "1024")
	t.Setenv("BLOB_ENCODING", "NONE")

	cfg := Load()
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, 1024, cfg.ChunkSize)
	assert.Equal(t, "none", cfg.BlobEncoding)
}

func TestLoadFallsBackOnBadValues(t *testing.T) {
	t.Setenv("ORDER_TAX_RATE", "-0.10")
	t.Setenv("BLOB_CHUNK_SIZE", "not-a-number")
	t.Setenv("BLOB_ENCODING", "gzip")

	cfg := Load()
	assert.True(t, cfg.TaxRate.Equal(decimal.RequireFromString(DefaultTaxRate)))
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, "base64", cfg.BlobEncoding)
}
