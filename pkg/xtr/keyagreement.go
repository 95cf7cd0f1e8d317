package xtr

import (
	"fmt"
	"math/big"

	"github.com/barnettlynn/s6hcs/pkg/bigmath"
	"github.com/barnettlynn/s6hcs/pkg/gfp2"
)

// millerRabinRounds is the round count XTR uses for every primality check
// in parameter generation (spec: 1024 rounds).
const millerRabinRounds = 1024

// Params is the public XTR parameter set shared between client and server:
// (p, q, Tr(g)), plus the server's ephemeral public value Tr(g^k).
type Params struct {
	P, Q   *big.Int
	TraceG *big.Int
	TraceK *big.Int // Tr(g^k), published alongside (p, q, Tr(g))
}

// Secret is the server-held XTR secret, discarded after the session ends.
type Secret struct {
	K *big.Int
}

// GenerateServerParams runs the full server-side key-generation search
// described in spec §4.4: sample r until q = r^2-r+1 is a prime congruent
// to 7 mod 12, sample k until p = r+k*q is a prime congruent to 2 mod 3,
// then search for a base element whose (p+1)-trace lies in GF(p) (equal
// coefficients), and derive Tr(g) from it.
func GenerateServerParams() (*Params, *Secret, error) {
	q, r, err := findQ()
	if err != nil {
		return nil, nil, err
	}

	p, err := findP(q, r)
	if err != nil {
		return nil, nil, err
	}

	quotient := new(big.Int).Mul(p, p)
	quotient.Sub(quotient, p)
	quotient.Add(quotient, big.NewInt(1))
	quotient.Div(quotient, q)

	traceG, err := findBase(p, quotient)
	if err != nil {
		return nil, nil, err
	}

	k, err := bigmath.RandRange(big.NewInt(2), new(big.Int).Sub(q, big.NewInt(3)))
	if err != nil {
		return nil, nil, fmt.Errorf("xtr: sample server secret: %w", err)
	}

	traces := New(p)
	traceGK := traces.Trace(k, gfp2.FromScalarPtr(p, traceG))

	return &Params{P: p, Q: q, TraceG: traceG, TraceK: scalarValue(traceGK)},
		&Secret{K: k}, nil
}

// scalarValue returns the v for which gfp2.FromScalar(p, v) rebuilds e, for
// an element whose two coefficients are equal (FromScalar stores -v).
func scalarValue(e gfp2.Element) *big.Int {
	return new(big.Int).Mod(new(big.Int).Neg(e.A), e.P)
}

func findQ() (*big.Int, *big.Int, error) {
	two128 := new(big.Int).Lsh(big.NewInt(1), 128)
	twelve := big.NewInt(12)
	seven := big.NewInt(7)
	for {
		r, err := bigmath.RandRange(big.NewInt(0), two128)
		if err != nil {
			return nil, nil, fmt.Errorf("xtr: sample r: %w", err)
		}
		q := new(big.Int).Mul(r, r)
		q.Sub(q, r)
		q.Add(q, big.NewInt(1))

		if new(big.Int).Mod(q, twelve).Cmp(seven) != 0 {
			continue
		}
		if !bigmath.MillerRabin(q, millerRabinRounds) {
			continue
		}
		return q, r, nil
	}
}

func findP(q, r *big.Int) (*big.Int, error) {
	three := big.NewInt(3)
	two := big.NewInt(2)
	for {
		k, err := bigmath.RandRange(big.NewInt(0), q)
		if err != nil {
			return nil, fmt.Errorf("xtr: sample k for p: %w", err)
		}
		p := new(big.Int).Mul(k, q)
		p.Add(p, r)

		if new(big.Int).Mod(p, three).Cmp(two) != 0 {
			continue
		}
		if !bigmath.MillerRabin(p, millerRabinRounds) {
			continue
		}
		return p, nil
	}
}

// findBase searches for a base c such that Tr(g^(p+1)) lies in GF(p) (its
// two coefficients are equal), then derives Tr(g) = Tr(g^quotient); it
// rejects and retries if the derived trace is the degenerate value 3.
func findBase(p, quotient *big.Int) (*big.Int, error) {
	pPlus1 := new(big.Int).Add(p, big.NewInt(1))
	for {
		c, err := gfp2.Random(p)
		if err != nil {
			return nil, fmt.Errorf("xtr: sample candidate base: %w", err)
		}
		traces := New(p)
		t := traces.Trace(pPlus1, &c)
		if !t.IsP1() {
			continue
		}

		traceG := traces.Trace(quotient, nil)
		if traceG.Equal(gfp2.FromScalar(p, big.NewInt(3))) {
			continue
		}
		return traceG.A, nil
	}
}

// ClientDerive is the client side of the agreement: it draws b in
// [2, q-3], computes Tr(g^b) and Tr(g^(bk)), and returns the serialized
// wrapping key together with Tr(g^b) to send back to the server.
func ClientDerive(params *Params) (wrapKey []byte, traceB *big.Int, err error) {
	b, err := bigmath.RandRange(big.NewInt(2), new(big.Int).Sub(params.Q, big.NewInt(2)))
	if err != nil {
		return nil, nil, fmt.Errorf("xtr: sample client secret: %w", err)
	}

	traces := New(params.P)
	tb := traces.Trace(b, gfp2.FromScalarPtr(params.P, params.TraceG))
	tbk := traces.Trace(b, gfp2.FromScalarPtr(params.P, params.TraceK))

	return tbk.Bytes(), scalarValue(tb), nil
}

// ServerRecall is the server side recall: given the client's Tr(g^b) and
// the server's retained secret k, it recomputes the same wrapping key by
// evaluating Tr((g^b)^k).
func ServerRecall(params *Params, sec *Secret, traceB *big.Int) ([]byte, error) {
	traces := New(params.P)
	tbk := traces.Trace(sec.K, gfp2.FromScalarPtr(params.P, traceB))
	return tbk.Bytes(), nil
}
