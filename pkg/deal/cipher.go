// Package deal implements the DEAL-128 block cipher: a 6-round Feistel
// network on 128-bit blocks using DES as the round function, plus the
// streaming modes built on it (modes.go).
//
// DES is used directly from the standard library's crypto/des, the same
// way the teacher library reaches for crypto/aes + crypto/cipher directly
// rather than vendoring a block-cipher implementation (pkg/ntag424/crypto.go).
package deal

import (
	"crypto/des"
	"encoding/binary"
	"fmt"
)

// roundKeyConst is the fixed DES key C = 0x0123456789ABCDEF used to
// derive the six round keys from the 128-bit DEAL key. Part of the
// cipher's public specification; must match exactly (§9).
var roundKeyConst = [8]byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xAB, 0xCD, 0xEF}

// Block is a 128-bit DEAL block split into two 64-bit halves.
type Block struct {
	L, R uint64
}

// Key is the 128-bit DEAL-128 key.
type Key [16]byte

// Cipher holds the six DES-derived round keys for one DEAL-128 key. Round
// keys are owned by their cipher instance and have the same lifetime.
type Cipher struct {
	rk [6]uint64
}

// desEncryptBlock64 runs DES_encrypt(key64, block64) using crypto/des as
// the 64-bit block primitive spec §4.5 calls for.
func desEncryptBlock64(key64, block64 uint64) (uint64, error) {
	var keyBytes, blockBytes [8]byte
	binary.BigEndian.PutUint64(keyBytes[:], key64)
	binary.BigEndian.PutUint64(blockBytes[:], block64)

	block, err := des.NewCipher(keyBytes[:])
	if err != nil {
		return 0, fmt.Errorf("deal: des key schedule: %w", err)
	}
	var out [8]byte
	block.Encrypt(out[:], blockBytes[:])
	return binary.BigEndian.Uint64(out[:]), nil
}

// bitAt returns 1 << (64 - i), the masking constant used in the round-key
// schedule.
func bitAt(i uint) uint64 {
	return uint64(1) << (64 - i)
}

// New derives the six round keys for key K from the schedule in §4.5:
// rk[0]=K_hi, rk[1]=K_lo^rk[0], rk[2]=K_hi^rk[1]^bit(1), rk[3]=K_lo^rk[2]^bit(2),
// rk[4]=K_hi^rk[3]^bit(4), rk[5]=K_lo^rk[4]^bit(8], each then run through
// DES_encrypt(C, .).
func New(key Key) (*Cipher, error) {
	kHi := binary.BigEndian.Uint64(key[0:8])
	kLo := binary.BigEndian.Uint64(key[8:16])

	var raw [6]uint64
	raw[0] = kHi
	raw[1] = kLo ^ raw[0]
	raw[2] = kHi ^ raw[1] ^ bitAt(1)
	raw[3] = kLo ^ raw[2] ^ bitAt(2)
	raw[4] = kHi ^ raw[3] ^ bitAt(4)
	raw[5] = kLo ^ raw[4] ^ bitAt(8)

	c := uint64(0)
	for i, b := range roundKeyConst {
		c |= uint64(b) << (56 - 8*i)
	}

	var rk [6]uint64
	for i, r := range raw {
		v, err := desEncryptBlock64(c, r)
		if err != nil {
			return nil, err
		}
		rk[i] = v
	}
	return &Cipher{rk: rk}, nil
}

// Encrypt runs the 6-round Feistel network: for each round, R ^= DES(rk[i], L)
// then (L, R) are swapped.
func (c *Cipher) Encrypt(b Block) (Block, error) {
	l, r := b.L, b.R
	for i := 0; i < 6; i++ {
		f, err := desEncryptBlock64(c.rk[i], l)
		if err != nil {
			return Block{}, err
		}
		r ^= f
		l, r = r, l
	}
	return Block{L: l, R: r}, nil
}

// Decrypt runs the Feistel network in reverse.
func (c *Cipher) Decrypt(b Block) (Block, error) {
	l, r := b.L, b.R
	for i := 0; i < 6; i++ {
		l, r = r, l
		f, err := desEncryptBlock64(c.rk[5-i], l)
		if err != nil {
			return Block{}, err
		}
		r ^= f
	}
	return Block{L: l, R: r}, nil
}

// BlockFromBytes reads a big-endian 16-byte slice into a Block.
func BlockFromBytes(b []byte) Block {
	return Block{
		L: binary.BigEndian.Uint64(b[0:8]),
		R: binary.BigEndian.Uint64(b[8:16]),
	}
}

// Bytes serializes a Block as 16 big-endian bytes.
func (b Block) Bytes() [16]byte {
	var out [16]byte
	binary.BigEndian.PutUint64(out[0:8], b.L)
	binary.BigEndian.PutUint64(out[8:16], b.R)
	return out
}
