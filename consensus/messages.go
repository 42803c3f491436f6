// Package consensus carries the wire messages exchanged with the
// consensus engine and the application surface that serves them.
package consensus

// ProTxHashSize is the width of a masternode pro-tx-hash on the wire.
const ProTxHashSize = 32

// InitChainRequest asks for the initial state structure. It carries no
// fields.
type InitChainRequest struct{}

// InitChainResponse is empty; failures travel out of band.
type InitChainResponse struct{}

// BlockBeginRequest opens a block. The previous block time is absent
// only on the first block of a chain.
type BlockBeginRequest struct {
	BlockHeight         uint64  `cbor:"block_height"`
	BlockTimeMs         uint64  `cbor:"block_time_ms"`
	PreviousBlockTimeMs *uint64 `cbor:"previous_block_time_ms,omitempty"`
	ProposerProTxHash   []byte  `cbor:"proposer_pro_tx_hash"`
}

// BlockBeginResponse is empty.
type BlockBeginResponse struct{}

// FeesInfo aggregates the fee totals of an executed block.
type FeesInfo struct {
	ProcessingFees uint64        `cbor:"processing_fees"`
	StorageFees    uint64        `cbor:"storage_fees"`
	RefundsByEpoch []EpochRefund `cbor:"refunds_by_epoch,omitempty"`
}

// EpochRefund is an (epoch, amount) pair, encoded as a two-element
// array.
type EpochRefund struct {
	_      struct{} `cbor:",toarray"`
	Epoch  uint16
	Amount uint64
}

// BlockEndRequest closes a block with its accumulated fees.
type BlockEndRequest struct {
	Fees FeesInfo `cbor:"fees"`
}

// BlockEndResponse reports the epoch outcome of a processed block.
// PaidEpochIndex is present only when a payout completed.
type BlockEndResponse struct {
	CurrentEpochIndex    uint16  `cbor:"current_epoch_index"`
	IsEpochChange        bool    `cbor:"is_epoch_change"`
	MasternodesPaidCount uint16  `cbor:"masternodes_paid_count"`
	PaidEpochIndex       *uint16 `cbor:"paid_epoch_index,omitempty"`
}
