package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/gzip"

	"github.com/arloliu/flexcol/internal/pool"
)

// gzipWriterPool pools gzip writers; a writer allocates its compression
// tables on creation and Reset reuses them.
var gzipWriterPool = sync.Pool{
	New: func() any {
		w, err := gzip.NewWriterLevel(nil, gzip.DefaultCompression)
		if err != nil {
			// This should never happen with a valid level
			panic(fmt.Sprintf("failed to create gzip writer for pool: %v", err))
		}

		return w
	},
}

var gzipReaderPool = sync.Pool{
	New: func() any {
		return new(gzip.Reader)
	},
}

// DefaultMaxDecompressedSize caps the output of GzipCompressor.Decompress.
const DefaultMaxDecompressedSize = 64 << 20

// ErrDecompressedTooLarge is returned when a gzip stream inflates past the
// decompressor's size cap.
var ErrDecompressedTooLarge = errors.New("decompressed data exceeds size limit")

// GzipCompressor produces standard gzip streams (RFC 1952), readable by any
// gzip implementation. It backs the compressed (flag 1) envelope payload.
//
// GzipCompressor is safe for concurrent use.
type GzipCompressor struct {
	maxSize int64
}

var _ Codec = (*GzipCompressor)(nil)

// NewGzipCompressor creates a new gzip compressor.
func NewGzipCompressor() GzipCompressor {
	return GzipCompressor{maxSize: DefaultMaxDecompressedSize}
}

// NewGzipCompressorWithLimit creates a gzip compressor whose Decompress
// fails with ErrDecompressedTooLarge beyond maxSize bytes of output.
// A non-positive maxSize selects DefaultMaxDecompressedSize.
func NewGzipCompressorWithLimit(maxSize int64) GzipCompressor {
	if maxSize <= 0 {
		maxSize = DefaultMaxDecompressedSize
	}

	return GzipCompressor{maxSize: maxSize}
}

// Compress compresses data into a single gzip member.
//
// Parameters:
//   - data: Input data to compress
//
// Returns:
//   - []byte: gzip stream; an empty input still yields a valid stream
//   - error: Compression error if any
func (c GzipCompressor) Compress(data []byte) ([]byte, error) {
	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	w, _ := gzipWriterPool.Get().(*gzip.Writer)
	defer gzipWriterPool.Put(w)
	w.Reset(buf)

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Clone(), nil
}

// Decompress decompresses a gzip stream.
//
// Returns:
//   - []byte: decompressed data
//   - error: header, checksum or truncation errors from the gzip reader,
//     ErrDecompressedTooLarge past the size cap
func (c GzipCompressor) Decompress(data []byte) ([]byte, error) {
	limit := c.maxSize
	if limit <= 0 {
		limit = DefaultMaxDecompressedSize
	}

	r, _ := gzipReaderPool.Get().(*gzip.Reader)
	defer gzipReaderPool.Put(r)

	if err := r.Reset(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrDecompressedTooLarge, limit)
	}

	return out, nil
}
