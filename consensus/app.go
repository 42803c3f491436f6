package consensus

import (
	"context"
	"fmt"
	"time"

	"dashplatform/core"
	"dashplatform/observability"
)

// Application adapts the platform's block lifecycle to the wire
// messages a consensus engine exchanges.
type Application struct {
	platform *core.Platform
}

// NewApplication wires an Application over the platform.
func NewApplication(p *core.Platform) (*Application, error) {
	if p == nil {
		return nil, fmt.Errorf("consensus: nil platform")
	}
	return &Application{platform: p}, nil
}

// InitChain creates the initial state structure.
func (a *Application) InitChain(ctx context.Context, _ InitChainRequest) (InitChainResponse, error) {
	start := time.Now()
	if err := a.platform.InitChain(ctx); err != nil {
		observability.Handler().Observe("init_chain", time.Since(start), err)
		return InitChainResponse{}, err
	}
	observability.Handler().Observe("init_chain", time.Since(start), nil)
	return InitChainResponse{}, nil
}

// BlockBegin validates and opens the block described by the request.
func (a *Application) BlockBegin(ctx context.Context, req BlockBeginRequest) (BlockBeginResponse, error) {
	start := time.Now()
	if len(req.ProposerProTxHash) != ProTxHashSize {
		err := fmt.Errorf("consensus: proposer pro-tx-hash holds %d bytes, want %d",
			len(req.ProposerProTxHash), ProTxHashSize)
		observability.Handler().Observe("block_begin", time.Since(start), err)
		return BlockBeginResponse{}, err
	}
	block := core.BlockInfo{
		Height: req.BlockHeight,
		TimeMs: req.BlockTimeMs,
	}
	copy(block.ProposerProTxHash[:], req.ProposerProTxHash)
	if req.PreviousBlockTimeMs != nil {
		block.PreviousTimeMs = *req.PreviousBlockTimeMs
		block.HasPreviousTime = true
	}
	if err := a.platform.BlockBegin(ctx, block); err != nil {
		observability.Handler().Observe("block_begin", time.Since(start), err)
		return BlockBeginResponse{}, err
	}
	var interval time.Duration
	if block.HasPreviousTime && block.TimeMs >= block.PreviousTimeMs {
		interval = time.Duration(block.TimeMs-block.PreviousTimeMs) * time.Millisecond
	}
	observability.Consensus().RecordBlock(block.Height, interval)
	observability.Handler().Observe("block_begin", time.Since(start), nil)
	return BlockBeginResponse{}, nil
}

// BlockEnd hands the block's fees to the processor and reports the
// epoch outcome. The wire carries no fee multiplier; new epochs take
// the platform's configured default.
func (a *Application) BlockEnd(ctx context.Context, req BlockEndRequest) (BlockEndResponse, error) {
	start := time.Now()
	blockFees := core.BlockFees{
		ProcessingFees: req.Fees.ProcessingFees,
		StorageFees:    req.Fees.StorageFees,
		FeeMultiplier:  a.platform.DefaultFeeMultiplier(),
	}
	var refunded uint64
	for _, refund := range req.Fees.RefundsByEpoch {
		blockFees.RefundsByEpoch = append(blockFees.RefundsByEpoch, core.EpochRefund{
			Epoch:  refund.Epoch,
			Amount: refund.Amount,
		})
		refunded += refund.Amount
	}

	res, err := a.platform.BlockEnd(ctx, blockFees)
	if err != nil {
		observability.Handler().Observe("block_end", time.Since(start), err)
		return BlockEndResponse{}, err
	}

	events := observability.Events()
	events.RecordCredits("processing_deposit", req.Fees.ProcessingFees)
	events.RecordCredits("storage_deposit", req.Fees.StorageFees)
	if refunded > 0 {
		events.RecordCredits("refund", refunded)
	}
	if res.Distribution.EpochPaid {
		events.RecordCredits("proposer_payout", res.Distribution.CreditsPaid)
	}

	resp := BlockEndResponse{
		CurrentEpochIndex:    res.Epoch.CurrentIndex,
		IsEpochChange:        res.Epoch.IsEpochChange,
		MasternodesPaidCount: res.Distribution.ProposersPaidCount,
	}
	if res.Distribution.EpochPaid {
		paid := res.Distribution.PaidEpochIndex
		resp.PaidEpochIndex = &paid
	}
	observability.Handler().Observe("block_end", time.Since(start), nil)
	return resp, nil
}
