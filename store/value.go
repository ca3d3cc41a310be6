package store

import (
	"fmt"

	"github.com/arloliu/flexcol/internal/encoding"
)

// valueKind tags the stored bytes with the Go type ToStoredData produced.
type valueKind byte

const (
	kindNull       valueKind = 0x0
	kindText       valueKind = 0x1
	kindBinary     valueKind = 0x2
	kindStructured valueKind = 0x3
)

func (k valueKind) String() string {
	switch k {
	case kindNull:
		return "null"
	case kindText:
		return "text"
	case kindBinary:
		return "binary"
	case kindStructured:
		return "structured"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// encodeValue converts a stored value into a tagged row value.
func encodeValue(data any) ([]byte, error) {
	switch v := data.(type) {
	case nil:
		return []byte{byte(kindNull)}, nil
	case string:
		return append([]byte{byte(kindText)}, v...), nil
	case []byte:
		return append([]byte{byte(kindBinary)}, v...), nil
	case map[string]any:
		text, err := encoding.EncodeJSON(v)
		if err != nil {
			return nil, fmt.Errorf("encode structured value: %w", err)
		}

		return append([]byte{byte(kindStructured)}, text...), nil
	default:
		return nil, fmt.Errorf("unsupported stored value type %T", data)
	}
}

// decodeValue converts a tagged row value back into the stored value.
// value must not be retained by the caller afterwards.
func decodeValue(value []byte) (any, error) {
	if len(value) == 0 {
		return nil, ErrCorruptRow
	}

	kind, body := valueKind(value[0]), value[1:]
	switch kind {
	case kindNull:
		return nil, nil
	case kindText:
		return string(body), nil
	case kindBinary:
		out := make([]byte, len(body))
		copy(out, body)

		return out, nil
	case kindStructured:
		parsed, err := encoding.DecodeJSON(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrCorruptRow, kind, err)
		}
		obj, ok := parsed.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s value is a %s", ErrCorruptRow, kind, encoding.Shape(parsed))
		}

		return obj, nil
	default:
		return nil, fmt.Errorf("%w: unknown %s", ErrCorruptRow, kind)
	}
}
