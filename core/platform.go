// Package core executes per-block fee processing: the epoch clock,
// epoch-change bookkeeping, storage-fee distribution and proposer
// payouts, all inside one transaction per block.
package core

import (
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"dashplatform/drive"
	"dashplatform/fees"
	"dashplatform/observability/metrics"
)

// DefaultProposerPayoutDelay is how many blocks an epoch must age past
// its first block before its proposers are paid.
const DefaultProposerPayoutDelay uint64 = 100

// Params configures a Platform.
type Params struct {
	Log *slog.Logger
	// ProposerPayoutDelay is the payout maturity delay in blocks. It
	// must be at least one.
	ProposerPayoutDelay uint64
	// DefaultFeeMultiplier is the multiplier byte pinned into new epochs
	// when the block carries none.
	DefaultFeeMultiplier byte
}

// DefaultParams returns the production defaults.
func DefaultParams() Params {
	return Params{
		ProposerPayoutDelay:  DefaultProposerPayoutDelay,
		DefaultFeeMultiplier: fees.DefaultMultiplierByte,
	}
}

// Platform runs block fee processing against a drive instance. Block
// handling is single-threaded, mirroring the consensus engine that
// drives it.
type Platform struct {
	drive   *drive.Drive
	log     *slog.Logger
	metrics *metrics.EngineMetrics
	tracer  trace.Tracer

	payoutDelay       uint64
	defaultMultiplier byte

	block *blockContext
}

// NewPlatform wires a Platform over the given drive.
func NewPlatform(d *drive.Drive, params Params) (*Platform, error) {
	if d == nil {
		return nil, fmt.Errorf("core: nil drive")
	}
	if params.ProposerPayoutDelay == 0 {
		return nil, fmt.Errorf("core: proposer payout delay must be at least one block")
	}
	if !fees.ValidMultiplierByte(params.DefaultFeeMultiplier) {
		return nil, fmt.Errorf("core: default fee multiplier byte %d: %w",
			params.DefaultFeeMultiplier, fees.ErrMultiplierNotSupported)
	}
	logger := params.Log
	if logger == nil {
		logger = slog.Default()
	}
	return &Platform{
		drive:             d,
		log:               logger,
		metrics:           metrics.Engine(),
		tracer:            otel.Tracer("dashplatform/core"),
		payoutDelay:       params.ProposerPayoutDelay,
		defaultMultiplier: params.DefaultFeeMultiplier,
	}, nil
}

// Drive returns the underlying state layer.
func (p *Platform) Drive() *drive.Drive {
	return p.drive
}

// DefaultFeeMultiplier returns the multiplier byte used for epochs
// opened without an explicit multiplier.
func (p *Platform) DefaultFeeMultiplier() byte {
	return p.defaultMultiplier
}
