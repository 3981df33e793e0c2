package change

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// DomainKey is the domain prefix for content-derived row keys.
// Version suffix enables future algorithm migration.
const DomainKey = "streamcheck/key/v1"

// Key is an opaque, stable identifier for a row, derived from the values
// of its primary-key columns.
type Key string

// KeyOf derives a key from the ordered tuple of primary-key column values.
// The derivation is deterministic (same input, same key) and sensitive to
// the order of the columns.
//
// Format: SHA256(domain + 0x00 + canonical tuple encoding), hex encoded.
// The null separator prevents domain/data boundary ambiguity.
func KeyOf(keyColumns ...Value) Key {
	var b strings.Builder
	b.WriteByte('(')
	for i, v := range keyColumns {
		if i > 0 {
			b.WriteByte(',')
		}
		appendCanonical(&b, v)
	}
	b.WriteByte(')')

	h := sha256.New()
	h.Write([]byte(DomainKey))
	h.Write([]byte{0x00})
	h.Write([]byte(b.String()))
	return Key(hex.EncodeToString(h.Sum(nil)))
}
