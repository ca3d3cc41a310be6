package envelope

import (
	"bytes"

	"github.com/arloliu/flexcol/compress"
	"github.com/arloliu/flexcol/errs"
	"github.com/arloliu/flexcol/format"
	"github.com/arloliu/flexcol/internal/pool"
)

// CompressionRatioThreshold is the largest compressed/plain size ratio for
// which the compressed payload is adopted.
const CompressionRatioThreshold = 0.95

// whitespace is the set of bytes trimmed around stored values.
const whitespace = " \t\n\v\f\r\x00"

// EncodeOptions controls envelope construction.
type EncodeOptions struct {
	// CompressOver enables compression for payloads longer than the given
	// number of bytes. Nil disables compression.
	CompressOver *int
}

// Result is the outcome of Encode.
type Result struct {
	// Data is the header followed by the payload.
	Data []byte
	// Header is the header written to Data.
	Header Header
	// Stats records the compression decision.
	Stats compress.CompressionStats
}

// Encode frames a JSON payload with the current envelope header.
//
// When opts.CompressOver is set and the payload is longer, the payload is
// gzip-compressed and the compressed form is used only if it is smaller than
// CompressionRatioThreshold times the plain length.
//
// Parameters:
//   - payload: UTF-8 JSON text
//   - opts: encoding options
//
// Returns:
//   - Result: framed value and compression details
//   - error: compression error if any
func Encode(payload []byte, opts EncodeOptions) (Result, error) {
	stats := compress.CompressionStats{
		Algorithm:    format.CompressionNone,
		OriginalSize: int64(len(payload)),
	}
	body := payload

	if opts.CompressOver != nil && len(payload) > *opts.CompressOver {
		codec, err := compress.GetCodec(format.CompressionGzip)
		if err != nil {
			return Result{}, err
		}

		compressed, err := codec.Compress(payload)
		if err != nil {
			return Result{}, err
		}

		stats.CompressedSize = int64(len(compressed))
		if float64(len(compressed)) < CompressionRatioThreshold*float64(len(payload)) {
			stats.Algorithm = format.CompressionGzip
			body = compressed
		}
	}

	header := NewHeader(stats.Algorithm)

	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	_, _ = buf.Write(header.Bytes())
	_, _ = buf.Write(body)

	return Result{Data: buf.Clone(), Header: header, Stats: stats}, nil
}

// Decoded is the outcome of Decode.
type Decoded struct {
	// Payload is the plain JSON text, surrounding whitespace removed.
	Payload []byte
	// Header is the parsed header; valid only when Framed is true.
	Header Header
	// Framed reports whether the value carried a header. Values without one
	// are bare, uncompressed JSON.
	Framed bool
}

// Decode strips the envelope from a stored value.
//
// Returns:
//   - Decoded: plain payload and header details
//   - error: ErrUnsupportedVersion, ErrInvalidEnvelope or ErrCorruptCompressedData
func Decode(data []byte) (Decoded, error) {
	trimmed := bytes.TrimLeft(data, whitespace)

	header, rest, framed, err := ParseHeader(trimmed)
	if err != nil {
		return Decoded{}, err
	}
	if !framed {
		return Decoded{Payload: bytes.TrimRight(trimmed, whitespace)}, nil
	}

	codec, err := compress.GetCodec(header.Compression)
	if err != nil {
		return Decoded{}, errs.InvalidEnvelope("", int(header.Compression))
	}

	payload, err := codec.Decompress(rest)
	if err != nil {
		return Decoded{}, errs.CorruptCompressedData("", err)
	}

	return Decoded{Payload: bytes.Trim(payload, whitespace), Header: header, Framed: true}, nil
}
