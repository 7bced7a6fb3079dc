package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"text", []byte("hello, warehouse")},
		{"unicode", []byte("prix de gros: 80€ — 卸売価格")},
		{"binary", []byte{0x00, 0xFF, 0x10, 0x80, 0x7F, 0x01}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, encoding := range []string{EncodingNone, EncodingBase64} {
				encoded, err := Encode(tc.content, encoding)
				require.NoError(t, err)

				decoded, err := Decode(encoded, encoding)
				require.NoError(t, err)
				assert.Equal(t, []byte(string(tc.content)), decoded)
			}
		})
	}
}

func TestEncode_UnknownEncoding(t *testing.T) {
	_, err := Encode([]byte("x"), "hex")
	assert.ErrorIs(t, err, ErrInvalidEncoding)

	_, err = Decode("x", "hex")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestSplit_Bounds(t *testing.T) {
	_, err := Split("abc", 0)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	_, err = Split("abc", -1)
	assert.ErrorIs(t, err, ErrInvalidChunkSize)

	chunks, err := Split("", 10)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, Chunk{Index: 0, Data: ""}, chunks[0])
}

func TestSplit_ExactCoverage(t *testing.T) {
	chunks, err := Split("abcdefghij", 4)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, Chunk{Index: 0, Data: "abcd"}, chunks[0])
	assert.Equal(t, Chunk{Index: 1, Data: "efgh"}, chunks[1])
	assert.Equal(t, Chunk{Index: 2, Data: "ij"}, chunks[2])

	// Even multiple of the chunk size: no trailing empty chunk.
	chunks, err = Split("abcdefgh", 4)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
}

func TestSplitJoin_LargePayload(t *testing.T) {
	text := strings.Repeat("a", 2_000_000)

	chunks, err := Split(text, 900_000)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0].Data, 900_000)
	assert.Len(t, chunks[1].Data, 900_000)
	assert.Len(t, chunks[2].Data, 200_000)

	joined, err := Join(chunks)
	require.NoError(t, err)
	assert.Equal(t, text, joined)
}

func TestJoin_SortsByIndex(t *testing.T) {
	joined, err := Join([]Chunk{
		{Index: 2, Data: "ij"},
		{Index: 0, Data: "abcd"},
		{Index: 1, Data: "efgh"},
	})
	require.NoError(t, err)
	assert.Equal(t, "abcdefghij", joined)
}

func TestJoin_MissingChunk(t *testing.T) {
	_, err := Join([]Chunk{
		{Index: 0, Data: "abcd"},
		{Index: 2, Data: "ij"},
	})
	var missing *MissingChunkError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, missing.Index)

	_, err = Join(nil)
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, missing.Index)
}

func TestRoundTripLaw(t *testing.T) {
	payloads := []string{
		"",
		"short",
		strings.Repeat("order ledger ", 1000),
		string([]byte{0x00, 0x01, 0xFE, 0xFF}),
	}
	sizes := []int{1, 3, 7, 64, 900_000}

	for _, payload := range payloads {
		for _, size := range sizes {
			encoded, err := Encode([]byte(payload), EncodingBase64)
			require.NoError(t, err)

			chunks, err := Split(encoded, size)
			require.NoError(t, err)

			joined, err := Join(chunks)
			require.NoError(t, err)
			require.Equal(t, encoded, joined)

			decoded, err := Decode(joined, EncodingBase64)
			require.NoError(t, err)
			require.Equal(t, payload, string(decoded))
		}
	}
}
