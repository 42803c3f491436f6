package core

import "math"

// EpochLengthMs is the fixed epoch duration in milliseconds.
const EpochLengthMs uint64 = 788_400_000

// EpochInfo pins a block to its place in the epoch clock.
type EpochInfo struct {
	CurrentIndex uint16
	// PreviousIndex is the epoch of the previous block, meaningful when
	// HasPrevious is set.
	PreviousIndex uint16
	HasPrevious   bool
	// IsEpochChange reports that this block is the first of its epoch.
	IsEpochChange bool
}

// epochIndexAt converts a timestamp to its epoch index. Indexes past
// the 16-bit range clamp to the last addressable epoch.
func epochIndexAt(genesisTimeMs, timeMs uint64) uint16 {
	if timeMs <= genesisTimeMs {
		return 0
	}
	index := (timeMs - genesisTimeMs) / EpochLengthMs
	if index > math.MaxUint16 {
		return math.MaxUint16
	}
	return uint16(index)
}

// CurrentEpochInfo derives a block's epoch from the chain genesis time
// and the block timestamps. The first block of a chain has no previous
// time and always reports an epoch change.
func CurrentEpochInfo(genesisTimeMs, blockTimeMs, previousBlockTimeMs uint64, hasPrevious bool) EpochInfo {
	current := epochIndexAt(genesisTimeMs, blockTimeMs)
	if !hasPrevious {
		return EpochInfo{CurrentIndex: current, IsEpochChange: true}
	}
	previous := epochIndexAt(genesisTimeMs, previousBlockTimeMs)
	return EpochInfo{
		CurrentIndex:  current,
		PreviousIndex: previous,
		HasPrevious:   true,
		IsEpochChange: previous != current,
	}
}
