package rewards

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"sort"
)

// ProposerEntry pairs a proposer's pro-tx-hash with the number of blocks
// it produced in one epoch.
type ProposerEntry struct {
	ProTxHash  [32]byte
	BlockCount uint64
}

// Share is one proposer's allocation from an epoch's processing pool.
type Share struct {
	ProTxHash [32]byte
	Amount    uint64
}

// Distribution summarises one epoch payout calculation. Leftover is the
// part of the pool that integer division could not assign; the engine
// recycles it into the current epoch's books.
type Distribution struct {
	Shares        []Share
	TotalAssigned uint64
	Leftover      uint64
}

// NormalizeEntries merges duplicate proposers, drops zero block counts
// and returns the entries ordered by hash bytes ascending alongside the
// aggregate block count.
func NormalizeEntries(entries []ProposerEntry) ([]ProposerEntry, *big.Int) {
	merged := make(map[[32]byte]*big.Int)
	total := big.NewInt(0)
	for _, entry := range entries {
		if entry.BlockCount == 0 {
			continue
		}
		count := new(big.Int).SetUint64(entry.BlockCount)
		if acc, ok := merged[entry.ProTxHash]; ok {
			acc.Add(acc, count)
		} else {
			merged[entry.ProTxHash] = count
		}
		total.Add(total, count)
	}
	normalized := make([]ProposerEntry, 0, len(merged))
	for hash, count := range merged {
		normalized = append(normalized, ProposerEntry{ProTxHash: hash, BlockCount: count.Uint64()})
	}
	sort.Slice(normalized, func(i, j int) bool {
		return bytes.Compare(normalized[i].ProTxHash[:], normalized[j].ProTxHash[:]) < 0
	})
	return normalized, total
}

// Split deterministically allocates pool across the proposers in
// proportion to their block counts. Every share is the floored pro-rata
// amount; shares come back ordered by hash bytes ascending and the
// rounding leftover is returned unassigned.
func Split(pool uint64, entries []ProposerEntry) *Distribution {
	normalized, totalCount := NormalizeEntries(entries)
	distribution := &Distribution{
		Shares: make([]Share, len(normalized)),
	}
	if totalCount.Sign() == 0 {
		distribution.Leftover = pool
		return distribution
	}
	bigPool := new(big.Int).SetUint64(pool)
	for i, entry := range normalized {
		numerator := new(big.Int).Mul(bigPool, new(big.Int).SetUint64(entry.BlockCount))
		quotient, _ := new(big.Int).DivMod(numerator, totalCount, new(big.Int))
		amount := quotient.Uint64()
		distribution.Shares[i] = Share{ProTxHash: entry.ProTxHash, Amount: amount}
		distribution.TotalAssigned += amount
	}
	distribution.Leftover = pool - distribution.TotalAssigned
	return distribution
}

// PayoutChecksum derives a deterministic checksum for a payout event
// based on epoch, proposer and amount, giving audit logs a stable
// idempotency key.
func PayoutChecksum(epoch uint16, proTxHash [32]byte, amount uint64) string {
	payload := make([]byte, 0, 2+len(proTxHash)+8)
	payload = binary.BigEndian.AppendUint16(payload, epoch)
	payload = append(payload, proTxHash[:]...)
	payload = binary.BigEndian.AppendUint64(payload, amount)
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
