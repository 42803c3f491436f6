package core

import "dashplatform/store"

// BlockInfo describes the block being executed.
type BlockInfo struct {
	Height uint64
	// TimeMs is the block time in milliseconds since the Unix epoch.
	TimeMs uint64
	// PreviousTimeMs is the previous block's time, meaningful when
	// HasPreviousTime is set. Only the first block of a chain may omit
	// it.
	PreviousTimeMs  uint64
	HasPreviousTime bool
	// ProposerProTxHash identifies the masternode that proposed the
	// block.
	ProposerProTxHash [32]byte
}

// EpochRefund is a refund total accumulated against a past epoch.
// Refunds ride along in the block fees for protocol compatibility but
// are not settled here.
type EpochRefund struct {
	Epoch  uint16
	Amount uint64
}

// BlockFees carries the fee totals accumulated while executing a
// block's transactions. FeeMultiplier must be a supported multiplier
// byte; it only takes effect on epoch-change blocks, where it is
// pinned into the new epoch.
type BlockFees struct {
	ProcessingFees uint64
	StorageFees    uint64
	RefundsByEpoch []EpochRefund
	FeeMultiplier  byte
}

// blockContext pairs an in-progress block with the transaction all of
// its state changes accumulate in.
type blockContext struct {
	block BlockInfo
	tx    *store.Transaction
}
