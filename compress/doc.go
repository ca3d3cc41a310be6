// Package compress provides the payload codecs used by the flexcol binary envelope.
//
// The envelope records a one-digit compression flag, and each flag maps to
// exactly one codec:
//
//	flag 0 (format.CompressionNone) → NoOpCompressor
//	flag 1 (format.CompressionGzip) → GzipCompressor
//
// # Usage
//
//	codec, err := compress.GetCodec(format.CompressionGzip)
//	if err != nil {
//	    return err
//	}
//	compressed, err := codec.Compress(jsonText)
//	original, err := codec.Decompress(compressed)
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. GzipCompressor
// pools its gzip writers and readers internally.
package compress
