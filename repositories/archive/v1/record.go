package v1

import (
	"bytes"
	"encoding/ascii85"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"
)

// MaxRecordSize is the maximum length of a single record in bytes (16MB).
const MaxRecordSize = 16 * 1024 * 1024

// record is one line of an archive.
type record struct {
	ID         string            `json:"_id"` // 16 hex chars
	Timestamp  int64             `json:"_ts"` // Unix milliseconds
	Path       string            `json:"_p"`
	Deleted    bool              `json:"_x,omitempty"`
	Title      string            `json:"_t,omitempty"`
	Properties map[string]string `json:"_m,omitempty"`
	Content    string            `json:"_c,omitempty"` // compressed
	Digest     string            `json:"_d,omitempty"`
}

// header is the prefix of a record needed to build the index.
type header struct {
	ID      string `json:"_id"`
	Path    string `json:"_p"`
	Deleted bool   `json:"_x,omitempty"`
}

// id returns the 16 hex character identifier of a page path.
func id(path string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(path))
}

func decodeRecord(data []byte) (*record, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	return &r, nil
}

func decodeHeader(data []byte) (*header, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}
	if h.ID == "" || h.Path == "" {
		return nil, fmt.Errorf("%w: missing id or path", ErrCorruptRecord)
	}
	if h.ID != id(h.Path) {
		return nil, fmt.Errorf("%w: id %s does not match path %s", ErrCorruptRecord, h.ID, h.Path)
	}
	return &h, nil
}

// Shared encoder and decoder, both are safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

func compress(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	compressed := zstdEncoder.EncodeAll(data, nil)

	var encoded bytes.Buffer
	enc := ascii85.NewEncoder(&encoded)
	_, _ = enc.Write(compressed)
	_ = enc.Close()

	return encoded.String()
}

func decompress(encoded string) ([]byte, error) {
	if encoded == "" {
		return nil, nil
	}

	dec := ascii85.NewDecoder(bytes.NewReader([]byte(encoded)))
	compressed, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: ascii85: %w", ErrDecompress, err)
	}

	out, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %w", ErrDecompress, err)
	}
	return out, nil
}
