package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"dashplatform/drive"
	"dashplatform/fees"
	"dashplatform/storage"
	"dashplatform/store"
)

func quietParams() Params {
	params := DefaultParams()
	params.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	return params
}

func newTestPlatform(t *testing.T, params Params) *Platform {
	t.Helper()
	st, err := store.New(storage.NewMemDB())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	p, err := NewPlatform(drive.New(st), params)
	if err != nil {
		t.Fatalf("new platform: %v", err)
	}
	return p
}

func newChainPlatform(t *testing.T, params Params) *Platform {
	t.Helper()
	p := newTestPlatform(t, params)
	if err := p.InitChain(context.Background()); err != nil {
		t.Fatalf("init chain: %v", err)
	}
	return p
}

func hashOf(b byte) [32]byte {
	var h [32]byte
	for i := range h {
		h[i] = b
	}
	return h
}

// chainDriver runs consecutive blocks through the handler pair, keeping
// track of heights and times.
type chainDriver struct {
	t        *testing.T
	platform *Platform
	height   uint64
	timeMs   uint64
}

func newChainDriver(t *testing.T, p *Platform, startMs uint64) *chainDriver {
	return &chainDriver{t: t, platform: p, timeMs: startMs}
}

// run executes the next block: advanceMs past the previous block's
// time, proposed by proposer, carrying the given fee totals.
func (c *chainDriver) run(proposer [32]byte, advanceMs, processing, storage uint64) BlockResult {
	c.t.Helper()
	block := BlockInfo{
		Height:            c.height + 1,
		TimeMs:            c.timeMs + advanceMs,
		ProposerProTxHash: proposer,
	}
	if c.height > 0 {
		block.PreviousTimeMs = c.timeMs
		block.HasPreviousTime = true
	}
	ctx := context.Background()
	if err := c.platform.BlockBegin(ctx, block); err != nil {
		c.t.Fatalf("begin block %d: %v", block.Height, err)
	}
	res, err := c.platform.BlockEnd(ctx, BlockFees{
		ProcessingFees: processing,
		StorageFees:    storage,
		FeeMultiplier:  c.platform.DefaultFeeMultiplier(),
	})
	if err != nil {
		c.t.Fatalf("end block %d: %v", block.Height, err)
	}
	c.height = block.Height
	c.timeMs = block.TimeMs
	return res
}

func TestNewPlatformRejectsNilDrive(t *testing.T) {
	if _, err := NewPlatform(nil, quietParams()); err == nil {
		t.Fatalf("expected error for nil drive")
	}
}

func TestNewPlatformRejectsZeroPayoutDelay(t *testing.T) {
	st, err := store.New(storage.NewMemDB())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	params := quietParams()
	params.ProposerPayoutDelay = 0
	if _, err := NewPlatform(drive.New(st), params); err == nil {
		t.Fatalf("expected error for zero payout delay")
	}
}

func TestNewPlatformRejectsBadMultiplier(t *testing.T) {
	st, err := store.New(storage.NewMemDB())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	params := quietParams()
	params.DefaultFeeMultiplier = 0x80
	_, err = NewPlatform(drive.New(st), params)
	if !errors.Is(err, fees.ErrMultiplierNotSupported) {
		t.Fatalf("err = %v, want multiplier not supported", err)
	}
}

func TestDefaultParams(t *testing.T) {
	params := DefaultParams()
	if params.ProposerPayoutDelay != DefaultProposerPayoutDelay {
		t.Fatalf("payout delay = %d, want %d", params.ProposerPayoutDelay, DefaultProposerPayoutDelay)
	}
	if !fees.ValidMultiplierByte(params.DefaultFeeMultiplier) {
		t.Fatalf("default multiplier byte %d is not valid", params.DefaultFeeMultiplier)
	}
}
