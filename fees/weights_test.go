package fees

import (
	"math/big"
	"testing"
)

func TestDistributeStorageCreditsConserves(t *testing.T) {
	for _, total := range []uint64{0, 1, 999, 3000, 10_000_000, 1 << 40, 1<<63 - 1} {
		shares := DistributeStorageCredits(total)
		if len(shares) != StorageDistributionEpochs {
			t.Fatalf("total %d: got %d shares, want %d", total, len(shares), StorageDistributionEpochs)
		}
		var sum uint64
		for _, s := range shares {
			sum += s
		}
		if sum != total {
			t.Fatalf("total %d: shares sum to %d", total, sum)
		}
	}
}

func TestDistributeStorageCreditsNeverIncreases(t *testing.T) {
	shares := DistributeStorageCredits(10_000_000)
	for i := 1; i < len(shares); i++ {
		if shares[i] > shares[i-1] {
			t.Fatalf("share %d (%d) above share %d (%d)", i, shares[i], i-1, shares[i-1])
		}
	}
	if shares[0] < shares[len(shares)-1] {
		t.Fatalf("first share %d below last share %d", shares[0], shares[len(shares)-1])
	}
}

func TestDistributeStorageCreditsFirstShare(t *testing.T) {
	// With a 50-epoch half-life the curve sums to roughly 72.64 leading
	// weights, so the first share of 10M sits near 137.7k.
	shares := DistributeStorageCredits(10_000_000)
	if shares[0] < 136_000 || shares[0] > 139_000 {
		t.Fatalf("first share %d outside expected band", shares[0])
	}
	// Small totals still land entirely in the early epochs.
	tiny := DistributeStorageCredits(3)
	var sum uint64
	for _, s := range tiny {
		sum += s
	}
	if sum != 3 {
		t.Fatalf("tiny distribution sums to %d", sum)
	}
}

func TestDistributeStorageCreditsDeterministic(t *testing.T) {
	a := DistributeStorageCredits(3000)
	b := DistributeStorageCredits(3000)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("share %d differs between runs: %d vs %d", i, a[i], b[i])
		}
	}
}

func TestStorageWeightsHalveEveryFiftyEpochs(t *testing.T) {
	weights, total := storageWeights()
	if len(weights) != StorageDistributionEpochs {
		t.Fatalf("got %d weights", len(weights))
	}
	// The leading weight is exactly 2^83.
	want := new(big.Int).Lsh(big.NewInt(1), weightScaleBits)
	if weights[0].Cmp(want) != 0 {
		t.Fatalf("weight 0 = %s, want 2^%d", weights[0], weightScaleBits)
	}
	// Every weight 50 epochs later is the exact right-shift by one.
	for i := 0; i+decayHalfLifeEpochs < len(weights); i++ {
		shifted := new(big.Int).Rsh(weights[i], 1)
		if weights[i+decayHalfLifeEpochs].Cmp(shifted) != 0 {
			t.Fatalf("weight %d is not half of weight %d", i+decayHalfLifeEpochs, i)
		}
	}
	// Weights strictly decrease inside a half-life window.
	for i := 1; i < decayHalfLifeEpochs; i++ {
		if weights[i].Cmp(weights[i-1]) >= 0 {
			t.Fatalf("weight %d does not decrease", i)
		}
	}
	if total.Sign() <= 0 {
		t.Fatalf("non-positive weight total")
	}
}

func TestRoot50ExactPowers(t *testing.T) {
	// 2^4150 has the exact 50th root 2^83.
	x := new(big.Int).Lsh(big.NewInt(1), weightScaleBits*decayHalfLifeEpochs)
	got := root50(x)
	want := new(big.Int).Lsh(big.NewInt(1), weightScaleBits)
	if got.Cmp(want) != 0 {
		t.Fatalf("root50(2^4150) = %s, want 2^83", got)
	}
	// One below the power floors to 2^83 - 1.
	xMinus := new(big.Int).Sub(x, big.NewInt(1))
	got = root50(xMinus)
	wantMinus := new(big.Int).Sub(want, big.NewInt(1))
	if got.Cmp(wantMinus) != 0 {
		t.Fatalf("root50(2^4150-1) = %s, want 2^83-1", got)
	}
}
