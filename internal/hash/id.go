package hash

import "github.com/cespare/xxhash/v2"

// separator keeps ("ab", "c") and ("a", "bc") from hashing alike.
const separator = 0x1f

// Fingerprint computes the xxHash64 of the given parts in order.
func Fingerprint(parts ...string) uint64 {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{separator})
	}

	return d.Sum64()
}
