// Package gfp2 implements arithmetic on the quadratic extension field
// GF(p^2), represented in the normal basis {alpha, alpha^p} where alpha is
// a primitive cube root of unity mod p (requires p = 2 mod 3). An element
// a*alpha + b*alpha^p is stored as the coefficient pair (a, b), each held
// in [0, p).
//
// The arithmetic below follows the identity alpha^2 = -alpha - 1, the same
// way Tomsons-go-srp builds its group arithmetic directly on math/big
// without an intermediate abstraction.
package gfp2

import (
	"crypto/rand"
	"math/big"
)

// Element is a GF(p^2) value (a, b), both reduced mod the field's prime p.
type Element struct {
	P    *big.Int
	A, B *big.Int
}

func mod(v, p *big.Int) *big.Int {
	r := new(big.Int).Mod(v, p)
	return r
}

// New builds an element from raw coefficients, reducing them mod p.
func New(p, a, b *big.Int) Element {
	return Element{P: p, A: mod(a, p), B: mod(b, p)}
}

// FromScalar stores scalar v as (-v mod p, -v mod p), so that the element's
// trace equals v under the normal-basis identity (the scalar 3 is stored as
// (-3 mod p, -3 mod p)).
func FromScalar(p *big.Int, v *big.Int) Element {
	neg := new(big.Int).Neg(v)
	return New(p, neg, neg)
}

// FromScalarPtr is FromScalar returning a pointer, for call sites that need
// to hand a candidate base straight to xtr.Traces.Trace.
func FromScalarPtr(p, v *big.Int) *Element {
	e := FromScalar(p, v)
	return &e
}

// Add returns e + f.
func (e Element) Add(f Element) Element {
	return New(e.P, new(big.Int).Add(e.A, f.A), new(big.Int).Add(e.B, f.B))
}

// Sub returns e - f.
func (e Element) Sub(f Element) Element {
	return New(e.P, new(big.Int).Sub(e.A, f.A), new(big.Int).Sub(e.B, f.B))
}

// Swap returns the conjugate (b, a).
func (e Element) Swap() Element {
	return Element{P: e.P, A: new(big.Int).Set(e.B), B: new(big.Int).Set(e.A)}
}

// Square returns e^2 = (b*(b-2a), a*(a-2b)).
func (e Element) Square() Element {
	twoA := new(big.Int).Lsh(e.A, 1)
	twoB := new(big.Int).Lsh(e.B, 1)
	na := new(big.Int).Mul(e.B, new(big.Int).Sub(e.B, twoA))
	nb := new(big.Int).Mul(e.A, new(big.Int).Sub(e.A, twoB))
	return New(e.P, na, nb)
}

// Calc computes the compound XTR-ladder operator:
//
//	( za*(ya-xb-yb) + zb*(xb-xa+yb), za*(xa-xb+ya) + zb*(yb-xa-ya) )
func Calc(x, y, z Element) Element {
	p := x.P
	t1 := new(big.Int).Sub(y.A, x.B)
	t1.Sub(t1, y.B)
	t2 := new(big.Int).Sub(x.B, x.A)
	t2.Add(t2, y.B)
	na := new(big.Int).Mul(z.A, t1)
	na.Add(na, new(big.Int).Mul(z.B, t2))

	t3 := new(big.Int).Sub(x.A, x.B)
	t3.Add(t3, y.A)
	t4 := new(big.Int).Sub(y.B, x.A)
	t4.Sub(t4, y.A)
	nb := new(big.Int).Mul(z.A, t3)
	nb.Add(nb, new(big.Int).Mul(z.B, t4))

	return New(p, na, nb)
}

// Equal reports coefficient-wise equality.
func (e Element) Equal(f Element) bool {
	return e.A.Cmp(f.A) == 0 && e.B.Cmp(f.B) == 0
}

// IsP1 reports whether e's two coefficients are equal: the predicate used
// to accept a candidate base element during XTR key generation.
func (e Element) IsP1() bool {
	return e.A.Cmp(e.B) == 0
}

// Random draws a uniformly random element with a != b (rejection sampling),
// as required by the base-search step of XTR key generation.
func Random(p *big.Int) (Element, error) {
	for {
		a, err := rand.Int(rand.Reader, p)
		if err != nil {
			return Element{}, err
		}
		b, err := rand.Int(rand.Reader, p)
		if err != nil {
			return Element{}, err
		}
		if a.Cmp(b) != 0 {
			return New(p, a, b), nil
		}
	}
}

// Bytes serializes the element as the concatenation of its two coefficients,
// each encoded as a fixed-width unsigned big-endian byte string sized to
// the field prime.
func (e Element) Bytes() []byte {
	n := (e.P.BitLen() + 7) / 8
	out := make([]byte, 2*n)
	aBytes := e.A.Bytes()
	bBytes := e.B.Bytes()
	copy(out[n-len(aBytes):n], aBytes)
	copy(out[2*n-len(bBytes):2*n], bBytes)
	return out
}
