package fees

import (
	"math/big"
	"sync"
)

// Storage credits decay into the processing pools of future epochs along
// a geometric curve that halves every 50 epochs. The curve is truncated
// to the 1000-epoch horizon (20 halvings) and carried as an integer
// weight table: the first 50 weights are ⌊2^(83 - k/50)⌋, computed as
// exact 50th roots, and every later weight is an earlier one shifted
// right by the number of completed halvings. Shares are then plain
// big-integer quotients, so every replica derives identical amounts.

// StorageDistributionEpochs is the number of future epochs one
// distribution spreads across.
const StorageDistributionEpochs = decayHalfLifeEpochs * decayHalvings

const (
	decayHalfLifeEpochs = 50
	decayHalvings       = 20
	// weightScaleBits sets the precision of the leading weight, 2^83.
	weightScaleBits = 83
)

var (
	weightsOnce sync.Once
	weightTable []*big.Int
	weightTotal *big.Int
)

func storageWeights() ([]*big.Int, *big.Int) {
	weightsOnce.Do(func() {
		base := make([]*big.Int, decayHalfLifeEpochs)
		for k := 0; k < decayHalfLifeEpochs; k++ {
			pow := new(big.Int).Lsh(big.NewInt(1), uint(weightScaleBits*decayHalfLifeEpochs-k))
			base[k] = root50(pow)
		}
		weightTable = make([]*big.Int, StorageDistributionEpochs)
		weightTotal = new(big.Int)
		for i := 0; i < StorageDistributionEpochs; i++ {
			halvings := i / decayHalfLifeEpochs
			w := new(big.Int).Rsh(base[i%decayHalfLifeEpochs], uint(halvings))
			weightTable[i] = w
			weightTotal.Add(weightTotal, w)
		}
	})
	return weightTable, weightTotal
}

// root50 returns ⌊x^(1/50)⌋ for x in (2^(50·82), 2^(50·83)].
func root50(x *big.Int) *big.Int {
	lo := new(big.Int).Lsh(big.NewInt(1), weightScaleBits-1)
	hi := new(big.Int).Lsh(big.NewInt(1), weightScaleBits)
	exp := big.NewInt(decayHalfLifeEpochs)
	mid, pow := new(big.Int), new(big.Int)
	for lo.Cmp(hi) < 0 {
		mid.Add(lo, hi)
		mid.Add(mid, big.NewInt(1))
		mid.Rsh(mid, 1)
		pow.Exp(mid, exp, nil)
		if pow.Cmp(x) <= 0 {
			lo.Set(mid)
		} else {
			hi.Sub(mid, big.NewInt(1))
		}
	}
	return new(big.Int).Set(lo)
}

// DistributeStorageCredits splits total across the decay curve. The
// result always has StorageDistributionEpochs entries and sums exactly
// to total: each entry is the floored proportional share and the
// rounding residual lands in the first entry.
func DistributeStorageCredits(total uint64) []uint64 {
	shares := make([]uint64, StorageDistributionEpochs)
	if total == 0 {
		return shares
	}
	weights, sum := storageWeights()
	bigTotal := new(big.Int).SetUint64(total)
	product := new(big.Int)
	var assigned uint64
	for i, w := range weights {
		product.Mul(bigTotal, w)
		product.Quo(product, sum)
		share := product.Uint64()
		shares[i] = share
		assigned += share
	}
	shares[0] += total - assigned
	return shares
}
