package bigmath

import (
	"math/big"
	"testing"
)

const testRounds = 20

var knownPrimes = []int64{2, 3, 5, 7, 11, 13, 97, 101, 7919, 104729}
var knownComposites = []int64{0, 1, 4, 9, 15, 100, 561, 1105, 104730}

func TestFermatAgreesOnKnownValues(t *testing.T) {
	for _, p := range knownPrimes {
		if !Fermat(big.NewInt(p), testRounds) {
			t.Fatalf("Fermat rejected prime %d", p)
		}
	}
	for _, c := range knownComposites {
		if Fermat(big.NewInt(c), testRounds) {
			t.Fatalf("Fermat accepted composite %d", c)
		}
	}
}

func TestSolovayStrassenAgreesOnKnownValues(t *testing.T) {
	for _, p := range knownPrimes {
		if !SolovayStrassen(big.NewInt(p), testRounds) {
			t.Fatalf("SolovayStrassen rejected prime %d", p)
		}
	}
	for _, c := range knownComposites {
		if SolovayStrassen(big.NewInt(c), testRounds) {
			t.Fatalf("SolovayStrassen accepted composite %d", c)
		}
	}
}

func TestMillerRabinAgreesOnKnownValues(t *testing.T) {
	for _, p := range knownPrimes {
		if !MillerRabin(big.NewInt(p), testRounds) {
			t.Fatalf("MillerRabin rejected prime %d", p)
		}
	}
	for _, c := range knownComposites {
		if MillerRabin(big.NewInt(c), testRounds) {
			t.Fatalf("MillerRabin accepted composite %d", c)
		}
	}
}

// 2^67 - 1 = 193707721 * 761838257287, a classic Fermat-pseudoprime trap
// for base 2, used here just to exercise a larger composite.
func TestMillerRabinRejectsLargeComposite(t *testing.T) {
	n := new(big.Int).Lsh(big.NewInt(1), 67)
	n.Sub(n, big.NewInt(1))
	if MillerRabin(n, testRounds) {
		t.Fatalf("MillerRabin accepted composite 2^67-1")
	}
}
