package core

import (
	"fmt"
	"math"
	"sort"

	"dashplatform/drive"
	"dashplatform/fees"
	"dashplatform/observability/logging"
	"dashplatform/store"
)

// applyEpochChange runs the first phase of an epoch-change block:
// horizon pools are created out to a thousand epochs past the new
// current epoch, the current epoch is opened, and the aggregate storage
// pool is spread across the distribution window. The batch is applied
// to tx before the second phase runs, so later reads observe the new
// pools.
func (p *Platform) applyEpochChange(block BlockInfo, epoch EpochInfo, multiplier byte, tx *store.Transaction) error {
	batch := store.NewBatch()
	if block.Height == 1 {
		drive.AddGenesisTimeOp(batch, block.TimeMs)
	}

	created := addEpochPoolOps(batch, epoch)

	current := drive.NewEpoch(epoch.CurrentIndex)
	if err := current.AddInitCurrentOps(batch, multiplier, block.Height, block.TimeMs); err != nil {
		return fmt.Errorf("core: open epoch %d: %w", epoch.CurrentIndex, err)
	}

	if epoch.CurrentIndex > 0 {
		if err := p.addStorageDistributionOps(batch, epoch.CurrentIndex, created, tx); err != nil {
			return err
		}
	}

	if err := p.drive.ApplyBatch(batch, tx); err != nil {
		return fmt.Errorf("core: apply epoch %d change: %w", epoch.CurrentIndex, err)
	}
	p.log.Info("epoch change",
		logging.Epoch(epoch.CurrentIndex),
		"height", block.Height,
		"pools_created", len(created),
	)
	return nil
}

// addEpochPoolOps queues a horizon pool for every epoch index entered
// since the previous block, keeping the distribution window a thousand
// epochs deep. Returns the set of pool indexes the batch creates.
func addEpochPoolOps(batch *store.Batch, epoch EpochInfo) map[uint16]bool {
	created := make(map[uint16]bool)
	start := uint32(0)
	if epoch.HasPrevious {
		start = uint32(epoch.PreviousIndex) + 1
	}
	for index := start; index <= uint32(epoch.CurrentIndex); index++ {
		horizon := index + uint32(fees.StorageDistributionEpochs)
		if horizon > math.MaxUint16 {
			break
		}
		drive.NewEpoch(uint16(horizon)).AddInitEmptyOps(batch)
		created[uint16(horizon)] = true
	}
	return created
}

// addStorageDistributionOps spreads the aggregate storage pool over the
// thousand epochs starting at the new current epoch and zeroes the
// pool. Pools this same batch just created are read as zero; target
// indexes past the 16-bit range fold into the last addressable epoch.
func (p *Platform) addStorageDistributionOps(batch *store.Batch, currentIndex uint16, created map[uint16]bool, tx *store.Transaction) error {
	pool, err := p.drive.StorageDistributionPool(tx)
	if err != nil {
		return err
	}
	if pool == 0 {
		return nil
	}

	shares := fees.DistributeStorageCredits(pool)
	added := make(map[uint16]uint64, len(shares))
	for offset, share := range shares {
		if share == 0 {
			continue
		}
		index := uint32(currentIndex) + uint32(offset)
		if index > math.MaxUint16 {
			index = math.MaxUint16
		}
		target := uint16(index)
		sum, err := fees.CheckedAdd(added[target], share)
		if err != nil {
			return fmt.Errorf("core: storage share for epoch %d: %w", target, err)
		}
		added[target] = sum
	}

	targets := make([]uint16, 0, len(added))
	for target := range added {
		targets = append(targets, target)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	for _, target := range targets {
		epoch := drive.NewEpoch(target)
		var current uint64
		if !created[target] {
			current, err = p.drive.EpochStorageCredits(epoch, tx)
			if err != nil {
				return err
			}
		}
		updated, err := fees.CheckedAdd(current, added[target])
		if err != nil {
			return fmt.Errorf("core: storage credits for epoch %d: %w", target, err)
		}
		epoch.AddStorageCreditsOp(batch, updated)
	}

	drive.AddStoragePoolOp(batch, 0)
	return nil
}
