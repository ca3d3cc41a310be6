package envelope

import (
	"fmt"

	"github.com/arloliu/flexcol/errs"
	"github.com/arloliu/flexcol/format"
)

const (
	// Prefix starts every enveloped value.
	Prefix = "FC:"
	// CurrentVersion is the envelope version written by this package and the
	// highest version it reads.
	CurrentVersion = 1
	// HeaderSize is the fixed header length: "FC:" VV "," C ",".
	HeaderSize = 8
)

// Header is the envelope prefix: a two-digit format version and a one-digit
// compression flag.
type Header struct {
	Version     int
	Compression format.CompressionFlag
}

// NewHeader creates a Header with the current version and the given flag.
func NewHeader(flag format.CompressionFlag) Header {
	return Header{Version: CurrentVersion, Compression: flag}
}

// Bytes serializes the header, e.g. "FC:01,1,".
func (h Header) Bytes() []byte {
	b := make([]byte, 0, HeaderSize)
	b = append(b, Prefix...)
	b = append(b, '0'+byte(h.Version/10%10), '0'+byte(h.Version%10), ',')
	b = append(b, '0'+byte(h.Compression%10), ',')

	return b
}

func (h Header) String() string {
	return fmt.Sprintf("version=%d compression=%s", h.Version, h.Compression)
}

// ParseHeader parses a header at the start of data.
//
// Parameters:
//   - data: stored value, leading whitespace already removed
//
// Returns:
//   - Header: parsed header (zero when not found)
//   - []byte: the bytes following the header (data itself when not found)
//   - bool: whether data starts with a well-formed header
//   - error: ErrUnsupportedVersion for a version above CurrentVersion,
//     ErrInvalidEnvelope for a compression flag other than 0 or 1
func ParseHeader(data []byte) (Header, []byte, bool, error) {
	if !hasHeader(data) {
		return Header{}, data, false, nil
	}

	h := Header{
		Version:     int(data[3]-'0')*10 + int(data[4]-'0'),
		Compression: format.CompressionFlag(data[6] - '0'),
	}
	rest := data[HeaderSize:]

	if h.Version > CurrentVersion {
		return h, rest, true, errs.UnsupportedVersion("", h.Version, CurrentVersion)
	}

	switch h.Compression {
	case format.CompressionNone, format.CompressionGzip:
		return h, rest, true, nil
	default:
		return h, rest, true, errs.InvalidEnvelope("", int(h.Compression))
	}
}

// hasHeader matches `^FC:\d\d,\d,`.
func hasHeader(data []byte) bool {
	if len(data) < HeaderSize || string(data[:len(Prefix)]) != Prefix {
		return false
	}

	return isDigit(data[3]) && isDigit(data[4]) && data[5] == ',' && isDigit(data[6]) && data[7] == ','
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
