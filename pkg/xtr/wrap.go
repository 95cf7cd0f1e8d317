package xtr

// WrapKey XORs the 16 big-endian bytes of a DEAL-128 key with the
// repeating byte sequence of the serialized trace key-stream: byte i of
// the key is XORed with keyStream[i % len(keyStream)]. Unwrap is the same
// operation (XOR is its own inverse).
//
// This is a known weakness (§9): a repeating-XOR stream is not IND-CPA.
// It is not strengthened here because the server performs the identical
// operation to recover the key; changing it would break interoperability.
func WrapKey(key [16]byte, keyStream []byte) [16]byte {
	var out [16]byte
	if len(keyStream) == 0 {
		return key
	}
	for i := range key {
		out[i] = key[i] ^ keyStream[i%len(keyStream)]
	}
	return out
}

// UnwrapKey reverses WrapKey.
func UnwrapKey(wrapped [16]byte, keyStream []byte) [16]byte {
	return WrapKey(wrapped, keyStream)
}
