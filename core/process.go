package core

import (
	"fmt"

	"dashplatform/drive"
	"dashplatform/fees"
	"dashplatform/store"
)

// ProcessBlockFees runs the fee flow for one block inside tx: epoch
// bookkeeping when the block opens a new epoch, the proposer tally, at
// most one matured epoch payout, and the deposit of the block's own
// fees. The caller owns tx and decides whether to commit.
func (p *Platform) ProcessBlockFees(block BlockInfo, blockFees BlockFees, tx *store.Transaction) (EpochInfo, DistributionInfo, error) {
	genesisMs := block.TimeMs
	if block.Height > 1 {
		stored, ok, err := p.drive.GenesisTime(tx)
		if err != nil {
			return EpochInfo{}, DistributionInfo{}, err
		}
		if !ok {
			return EpochInfo{}, DistributionInfo{}, fmt.Errorf("%w: genesis time", ErrMissingRequiredKey)
		}
		genesisMs = stored
	}
	epoch := CurrentEpochInfo(genesisMs, block.TimeMs, block.PreviousTimeMs, block.HasPreviousTime)

	if epoch.IsEpochChange {
		if err := p.applyEpochChange(block, epoch, blockFees.FeeMultiplier, tx); err != nil {
			return EpochInfo{}, DistributionInfo{}, err
		}
	}

	batch := store.NewBatch()
	current := drive.NewEpoch(epoch.CurrentIndex)

	count, err := p.drive.EpochProposerBlockCount(current, block.ProposerProTxHash, tx)
	if err != nil {
		return EpochInfo{}, DistributionInfo{}, err
	}
	current.AddProposerCountOp(batch, block.ProposerProTxHash, count+1)

	dist, err := p.addDistributeFeesOps(batch, epoch, block.Height, tx)
	if err != nil {
		return EpochInfo{}, DistributionInfo{}, err
	}

	if err := p.addFeeDepositOps(batch, current, blockFees, dist, tx); err != nil {
		return EpochInfo{}, DistributionInfo{}, err
	}

	if err := p.drive.ApplyBatch(batch, tx); err != nil {
		return EpochInfo{}, DistributionInfo{}, fmt.Errorf("core: apply block %d fee ops: %w", block.Height, err)
	}
	return epoch, dist, nil
}

// addFeeDepositOps queues the block's own fees: processing fees plus
// any payout leftover join the current epoch's processing credits,
// storage fees join the aggregate storage pool.
func (p *Platform) addFeeDepositOps(batch *store.Batch, current drive.Epoch, blockFees BlockFees, dist DistributionInfo, tx *store.Transaction) error {
	deposit, err := fees.CheckedAdd(blockFees.ProcessingFees, dist.FeeLeftovers.Units())
	if err != nil {
		return fmt.Errorf("core: processing deposit: %w", err)
	}
	credits, err := p.drive.EpochProcessingCredits(current, tx)
	if err != nil {
		return err
	}
	updated, err := fees.CheckedAdd(credits, deposit)
	if err != nil {
		return fmt.Errorf("core: epoch %d processing credits: %w", current.Index, err)
	}
	current.AddProcessingCreditsOp(batch, updated)

	pool, err := p.drive.StorageDistributionPool(tx)
	if err != nil {
		return err
	}
	pooled, err := fees.CheckedAdd(pool, blockFees.StorageFees)
	if err != nil {
		return fmt.Errorf("core: storage pool: %w", err)
	}
	drive.AddStoragePoolOp(batch, pooled)
	return nil
}
