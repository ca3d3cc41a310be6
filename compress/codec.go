package compress

import (
	"fmt"

	"github.com/arloliu/flexcol/format"
)

// Compressor compresses envelope payloads.
//
// Memory management:
//   - Returned slice is newly allocated and owned by the caller
//   - Input slice is not modified
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	Compress(data []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
//
// Error conditions:
//   - Returns error if input data is corrupted or truncated
//   - Returns error if data was compressed with an incompatible algorithm
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression decision.
type CompressionStats struct {
	// Algorithm is the compression flag written to the envelope.
	Algorithm format.CompressionFlag

	// OriginalSize is the size of the plain JSON payload.
	OriginalSize int64

	// CompressedSize is the size of the compressed payload, or zero when
	// compression was not attempted.
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Values less than 1.0 indicate successful compression.
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage.
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

var builtinCodecs = map[format.CompressionFlag]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionGzip: NewGzipCompressor(),
}

// GetCodec retrieves the shared built-in Codec for the given flag.
func GetCodec(flag format.CompressionFlag) (Codec, error) {
	if codec, ok := builtinCodecs[flag]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression flag: %d", flag)
}
