package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"dashplatform/fees"
	"dashplatform/observability/logging"
)

// BlockResult summarises fee processing for a finished block.
type BlockResult struct {
	Epoch        EpochInfo
	Distribution DistributionInfo
}

// InitChain creates the initial state layout and commits it. It must
// run exactly once on a fresh store, before the first block.
func (p *Platform) InitChain(ctx context.Context) error {
	_, span := p.tracer.Start(ctx, "core.init_chain")
	defer span.End()

	tx := p.drive.StartTransaction()
	if err := p.drive.CreateInitialStructure(tx); err != nil {
		tx.Abort()
		return fmt.Errorf("core: init chain: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("core: init chain commit: %w", err)
	}
	p.log.Info("chain state initialised", "epoch_pools", fees.StorageDistributionEpochs)
	return nil
}

// BlockBegin validates the incoming block header and opens the block's
// transaction. A block already in progress is aborted and replaced.
func (p *Platform) BlockBegin(ctx context.Context, block BlockInfo) error {
	_, span := p.tracer.Start(ctx, "core.block_begin", trace.WithAttributes(
		attribute.Int64("block.height", int64(block.Height)),
	))
	defer span.End()

	if block.Height == 0 {
		return fmt.Errorf("%w: height must be at least 1", ErrInvalidBlock)
	}
	if block.Height > 1 && !block.HasPreviousTime {
		return fmt.Errorf("%w: previous block time", ErrMissingRequiredKey)
	}
	if block.HasPreviousTime && block.TimeMs < block.PreviousTimeMs {
		return fmt.Errorf("%w: block time %d precedes previous block time %d",
			ErrInvalidBlock, block.TimeMs, block.PreviousTimeMs)
	}
	if block.Height > 1 {
		_, ok, err := p.drive.GenesisTime(nil)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: genesis time", ErrMissingRequiredKey)
		}
	}

	if p.block != nil {
		p.log.Warn("replacing unfinished block",
			"stale_height", p.block.block.Height,
			"height", block.Height,
		)
		p.block.tx.Abort()
	}
	p.block = &blockContext{block: block, tx: p.drive.StartTransaction()}
	return nil
}

// BlockEnd processes the block's accumulated fees and commits the
// block's transaction. The block context is cleared whether or not
// processing succeeds.
func (p *Platform) BlockEnd(ctx context.Context, blockFees BlockFees) (BlockResult, error) {
	_, span := p.tracer.Start(ctx, "core.block_end")
	defer span.End()

	if p.block == nil {
		return BlockResult{}, ErrNoBlockContext
	}
	bc := p.block
	p.block = nil
	started := time.Now()

	epoch, dist, err := p.ProcessBlockFees(bc.block, blockFees, bc.tx)
	if err != nil {
		bc.tx.Abort()
		return BlockResult{}, err
	}
	if err := bc.tx.Commit(); err != nil {
		p.log.Error("block commit failed", "height", bc.block.Height, "error", err)
		return BlockResult{}, fmt.Errorf("core: commit block %d: %w", bc.block.Height, err)
	}

	p.metrics.ObserveBlock(epoch.CurrentIndex, time.Since(started))
	if epoch.IsEpochChange {
		p.metrics.ObserveEpochChange()
	}
	if dist.EpochPaid {
		p.metrics.ObservePayout(dist.PaidEpochIndex, int(dist.ProposersPaidCount),
			dist.CreditsPaid, dist.FeeLeftovers.Units())
	}
	p.log.Info("block fees processed",
		"height", bc.block.Height,
		logging.Epoch(epoch.CurrentIndex),
		"epoch_change", epoch.IsEpochChange,
		"proposers_paid", dist.ProposersPaidCount,
	)
	return BlockResult{Epoch: epoch, Distribution: dist}, nil
}
