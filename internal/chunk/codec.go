// Package chunk reversibly splits an encoded payload into ordered,
// size-bounded segments and reassembles them. It exists to squeeze large
// objects through a document store's per-document size ceiling; the
// round-trip law Join(Split(Encode(x))) == Encode(x) holds exactly for any
// input.
package chunk

import (
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
)

const (
	// EncodingNone passes bytes through untouched. Stored chunks live in a
	// text column, so it is only safe for valid UTF-8 payloads; arbitrary
	// binary needs EncodingBase64.
	EncodingNone   = "none"
	EncodingBase64 = "base64"
)

var (
	ErrInvalidChunkSize = errors.New("invalid_chunk_size")
	ErrInvalidEncoding  = errors.New("invalid_encoding")
)

// MissingChunkError reports the first gap found in a chunk sequence.
type MissingChunkError struct {
	Index int
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("missing_chunk: index %d", e.Index)
}

// Chunk is one bounded segment of an encoded payload, addressable by its
// ordinal index.
type Chunk struct {
	Index int
	Data  string
}

// Encode converts raw content to the transport encoding. Base64 handles
// arbitrary binary; "none" passes the bytes through as-is.
func Encode(content []byte, encoding string) (string, error) {
	switch encoding {
	case EncodingNone:
		return string(content), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(content), nil
	default:
		return "", ErrInvalidEncoding
	}
}

// Decode is the exact inverse of Encode, including for non-UTF-8 binary
// payloads.
func Decode(text, encoding string) ([]byte, error) {
	switch encoding {
	case EncodingNone:
		return []byte(text), nil
	case EncodingBase64:
		return base64.StdEncoding.DecodeString(text)
	default:
		return nil, ErrInvalidEncoding
	}
}

// Split cuts text into size-character chunks with ascending contiguous
// indices. The last chunk may be shorter; empty input still yields one
// empty chunk so a stored object always has at least one segment.
func Split(text string, size int) ([]Chunk, error) {
	if size <= 0 {
		return nil, ErrInvalidChunkSize
	}

	if text == "" {
		return []Chunk{{Index: 0, Data: ""}}, nil
	}

	chunks := make([]Chunk, 0, (len(text)+size-1)/size)
	for start := 0; start < len(text); start += size {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Data:  text[start:end],
		})
	}
	return chunks, nil
}

// Join concatenates chunk data in index order. The sequence must cover
// 0..max with no gaps; the first missing index is reported.
func Join(chunks []Chunk) (string, error) {
	if len(chunks) == 0 {
		return "", &MissingChunkError{Index: 0}
	}

	ordered := make([]Chunk, len(chunks))
	copy(ordered, chunks)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	var total int
	for i, c := range ordered {
		if c.Index != i {
			return "", &MissingChunkError{Index: i}
		}
		total += len(c.Data)
	}

	buf := make([]byte, 0, total)
	for _, c := range ordered {
		buf = append(buf, c.Data...)
	}
	return string(buf), nil
}
