// Package padding implements PKCS#7 padding at a 16-byte block size, the
// scheme DEAL-128 plaintext is padded with before chunking into blocks
// (§4.7).
package padding

import "fmt"

// BlockSize is the DEAL-128 block size in bytes.
const BlockSize = 16

// Apply pads b with PKCS#7 at the given block size. It always pads: when
// len(b) is already a multiple of size, a full block of value size is
// appended.
func Apply(b []byte, size int) []byte {
	padLen := size - (len(b) % size)
	out := make([]byte, len(b)+padLen)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// Remove strips PKCS#7 padding by truncating by the value of the last
// byte, unconditionally (no validation beyond a non-empty, in-range
// length — this is an educational cipher suite with no padding-oracle
// hardening).
func Remove(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("padding: empty input")
	}
	padLen := int(b[len(b)-1])
	if padLen == 0 || padLen > len(b) {
		return nil, fmt.Errorf("padding: invalid pad length %d", padLen)
	}
	return b[:len(b)-padLen], nil
}
