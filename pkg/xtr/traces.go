// Package xtr implements the XTR public-key scheme: parameter generation,
// the trace ladder used to evaluate Tr(g^n) from Tr(g), and the
// Diffie-Hellman-style key agreement built on it (§4.3-§4.4 of the system
// this package implements).
package xtr

import (
	"math/big"

	"github.com/barnettlynn/s6hcs/pkg/gfp2"
)

// Traces memoizes Tr(g^n) values for a single base c. It must not be
// shared across concurrent key-agreement sessions: each session owns its
// own memo, the same way a *ntag424.Session is owned by exactly one
// authenticated card session in the teacher library.
type Traces struct {
	p *big.Int
	c *gfp2.Element
	m map[string]gfp2.Element
}

// New creates an empty trace memo for the given field prime.
func New(p *big.Int) *Traces {
	return &Traces{p: p, m: make(map[string]gfp2.Element)}
}

func key(n *big.Int) string {
	return n.Text(16)
}

// reseed replaces the current base and reseeds the memo with the two
// mandatory entries: m[0] = the scalar 3 (FromScalar(3)), m[1] = c.
func (t *Traces) reseed(c gfp2.Element) {
	t.c = &c
	t.m = make(map[string]gfp2.Element)
	t.m[key(big.NewInt(0))] = gfp2.FromScalar(t.p, big.NewInt(3))
	t.m[key(big.NewInt(1))] = c
}

// Trace computes Tr(g^n). If c is non-nil and differs from the stored base,
// the memo is reseeded first.
func (t *Traces) Trace(n *big.Int, c *gfp2.Element) gfp2.Element {
	if c != nil && (t.c == nil || !t.c.Equal(*c)) {
		t.reseed(*c)
	}
	return t.calcS(n)
}

// calcS computes m[n], walking n's bits from the second most significant
// bit downward. The odd-bit step needs the off-path entries m[cur-1] and
// m[cur+1], which are not necessarily on this walk's own path, so it
// recurses into calcS for each of them; the shared memo means that
// recursion almost always bottoms out in a cache hit after the first few
// calls. This mirrors calc_s in the original gfp2_traces.rs.
func (t *Traces) calcS(n *big.Int) gfp2.Element {
	if v, ok := t.m[key(n)]; ok {
		return v
	}

	cur := big.NewInt(1)
	for bitIdx := n.BitLen() - 2; bitIdx >= 0; bitIdx-- {
		bit := n.Bit(bitIdx)
		next := new(big.Int).Lsh(cur, 1)
		if bit == 1 {
			next.SetBit(next, 0, 1)
		}

		if _, ok := t.m[key(next)]; !ok {
			mCur := t.m[key(cur)]
			var v gfp2.Element
			if bit == 0 {
				sum := mCur.Add(mCur)
				v = mCur.Square().Sub(sum.Swap())
			} else {
				curPlus1 := new(big.Int).Add(cur, big.NewInt(1))
				curMinus1 := new(big.Int).Sub(cur, big.NewInt(1))
				sCurPlus1 := t.calcS(curPlus1)
				sCurMinus1 := t.calcS(curMinus1)
				v = gfp2.Calc(sCurPlus1, *t.c, mCur).Add(sCurMinus1.Swap())
			}
			t.m[key(next)] = v
		}
		cur = next
	}

	return t.m[key(n)]
}
