package format

import (
	"fmt"
	"strings"
)

type (
	UnknownPolicy   uint8
	StorageMode     uint8
	CompressionFlag uint8
)

const (
	UnknownPreserve UnknownPolicy = 0x1 // UnknownPreserve keeps unrecognized keys when re-serializing.
	UnknownDelete   UnknownPolicy = 0x2 // UnknownDelete drops unrecognized keys when re-serializing.

	StorageText   StorageMode = 0x1 // StorageText stores bare JSON text.
	StorageBinary StorageMode = 0x2 // StorageBinary stores JSON framed by the binary envelope.

	CompressionNone CompressionFlag = 0 // CompressionNone marks a payload of raw JSON text.
	CompressionGzip CompressionFlag = 1 // CompressionGzip marks a gzip-compressed payload.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownPreserve:
		return "preserve"
	case UnknownDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the defined policies.
func (p UnknownPolicy) Valid() bool {
	return p == UnknownPreserve || p == UnknownDelete
}

func (m StorageMode) String() string {
	switch m {
	case StorageText:
		return "text"
	case StorageBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the defined storage modes.
func (m StorageMode) Valid() bool {
	return m == StorageText || m == StorageBinary
}

func (c CompressionFlag) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	default:
		return "unknown"
	}
}

// ParseUnknownPolicy parses the textual form used in schema files.
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "preserve":
		return UnknownPreserve, nil
	case "delete":
		return UnknownDelete, nil
	default:
		return 0, fmt.Errorf("invalid unknown field policy: %q", s)
	}
}

// ParseStorageMode parses the textual form used in schema files.
func ParseStorageMode(s string) (StorageMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return StorageText, nil
	case "binary":
		return StorageBinary, nil
	default:
		return 0, fmt.Errorf("invalid storage mode: %q", s)
	}
}
