package bigmath

import "math/big"

var (
	zero  = big.NewInt(0)
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// Fermat performs the Fermat primality test with the given number of rounds.
// It samples a in [2, n-1) each round and fails if gcd(a, n) != 1 or
// a^(n-1) mod n != 1.
func Fermat(n *big.Int, rounds int) bool {
	if trivial, prime := smallCases(n); trivial {
		return prime
	}

	nMinus1 := new(big.Int).Sub(n, one)
	for i := 0; i < rounds; i++ {
		a, err := RandRange(two, nMinus1)
		if err != nil {
			return false
		}
		g, _, _ := ExtendedGCD(a, n)
		if g.CmpAbs(one) != 0 {
			return false
		}
		if new(big.Int).Exp(a, nMinus1, n).Cmp(one) != 0 {
			return false
		}
	}
	return true
}

// SolovayStrassen performs the Solovay-Strassen primality test.
// It samples a in [2, n), compares the Jacobi symbol against
// a^((n-1)/2) mod n, and fails on a zero symbol or a mismatch.
func SolovayStrassen(n *big.Int, rounds int) bool {
	if trivial, prime := smallCases(n); trivial {
		return prime
	}

	nMinus1 := new(big.Int).Sub(n, one)
	half := new(big.Int).Rsh(nMinus1, 1)

	for i := 0; i < rounds; i++ {
		a, err := RandRange(two, n)
		if err != nil {
			return false
		}
		j := JacobiSymbol(a, n)
		if j == 0 {
			return false
		}
		jn := new(big.Int).Mod(big.NewInt(int64(j)), n)
		if new(big.Int).Exp(a, half, n).Cmp(jn) != 0 {
			return false
		}
	}
	return true
}

// MillerRabin performs the Miller-Rabin primality test.
// n-1 is factored as 2^s * d with d odd; each round samples a and squares
// x = a^d mod n up to s-1 times, checking that 1 never appears except immediately
// after a -1 (or as the initial value).
func MillerRabin(n *big.Int, rounds int) bool {
	if trivial, prime := smallCases(n); trivial {
		return prime
	}

	nMinus1 := new(big.Int).Sub(n, one)
	d := new(big.Int).Set(nMinus1)
	s := 0
	for d.Bit(0) == 0 {
		d.Rsh(d, 1)
		s++
	}

roundLoop:
	for i := 0; i < rounds; i++ {
		a, err := RandRange(two, nMinus1)
		if err != nil {
			return false
		}
		x := new(big.Int).Exp(a, d, n)
		if x.Cmp(one) == 0 || x.Cmp(nMinus1) == 0 {
			continue
		}
		for r := 0; r < s-1; r++ {
			x.Exp(x, two, n)
			if x.Cmp(nMinus1) == 0 {
				continue roundLoop
			}
			if x.Cmp(one) == 0 {
				return false
			}
		}
		return false
	}
	return true
}

// smallCases handles n <= 1 and even n (true only for 2 and 3) so the three
// tests above never need to sample from a degenerate range.
func smallCases(n *big.Int) (trivial bool, prime bool) {
	if n.Cmp(one) <= 0 {
		return true, false
	}
	if n.Cmp(two) == 0 || n.Cmp(three) == 0 {
		return true, true
	}
	if IsEven(n) {
		return true, false
	}
	return false, false
}
