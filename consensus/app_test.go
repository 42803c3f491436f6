package consensus

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"dashplatform/core"
	"dashplatform/drive"
	"dashplatform/storage"
	"dashplatform/store"
)

func newTestApplication(t *testing.T, payoutDelay uint64) (*Application, *core.Platform) {
	t.Helper()
	st, err := store.New(storage.NewMemDB())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	params := core.DefaultParams()
	params.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	params.ProposerPayoutDelay = payoutDelay
	platform, err := core.NewPlatform(drive.New(st), params)
	if err != nil {
		t.Fatalf("new platform: %v", err)
	}
	app, err := NewApplication(platform)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	return app, platform
}

func wireHash(b byte) []byte {
	return bytes.Repeat([]byte{b}, ProTxHashSize)
}

func TestApplicationFirstBlockFlow(t *testing.T) {
	app, platform := newTestApplication(t, core.DefaultProposerPayoutDelay)
	ctx := context.Background()

	if _, err := app.InitChain(ctx, InitChainRequest{}); err != nil {
		t.Fatalf("init chain: %v", err)
	}
	if _, err := app.BlockBegin(ctx, BlockBeginRequest{
		BlockHeight:       1,
		BlockTimeMs:       1_700_000_000_000,
		ProposerProTxHash: wireHash(0x11),
	}); err != nil {
		t.Fatalf("block begin: %v", err)
	}
	resp, err := app.BlockEnd(ctx, BlockEndRequest{Fees: FeesInfo{
		ProcessingFees: 100,
		StorageFees:    2000,
		RefundsByEpoch: []EpochRefund{{Epoch: 5, Amount: 10}},
	}})
	if err != nil {
		t.Fatalf("block end: %v", err)
	}

	if resp.CurrentEpochIndex != 0 || !resp.IsEpochChange {
		t.Fatalf("response = %+v, want epoch 0 change", resp)
	}
	if resp.MasternodesPaidCount != 0 || resp.PaidEpochIndex != nil {
		t.Fatalf("response = %+v, want no payout", resp)
	}

	// Refunds ride the wire without touching the pools.
	pp, err := platform.Drive().EpochProcessingCredits(drive.NewEpoch(0), nil)
	if err != nil {
		t.Fatalf("processing credits: %v", err)
	}
	if pp != 100 {
		t.Fatalf("processing credits = %d, want 100", pp)
	}
	pool, err := platform.Drive().StorageDistributionPool(nil)
	if err != nil {
		t.Fatalf("storage pool: %v", err)
	}
	if pool != 2000 {
		t.Fatalf("storage pool = %d, want 2000", pool)
	}
}

func TestApplicationReportsPayout(t *testing.T) {
	app, _ := newTestApplication(t, 2)
	ctx := context.Background()

	if _, err := app.InitChain(ctx, InitChainRequest{}); err != nil {
		t.Fatalf("init chain: %v", err)
	}

	start := uint64(1_700_000_000_000)
	times := []uint64{start, start + 60_000, start + 788_400_001}
	for i, timeMs := range times {
		req := BlockBeginRequest{
			BlockHeight:       uint64(i) + 1,
			BlockTimeMs:       timeMs,
			ProposerProTxHash: wireHash(0x11),
		}
		if i > 0 {
			prev := times[i-1]
			req.PreviousBlockTimeMs = &prev
		}
		if _, err := app.BlockBegin(ctx, req); err != nil {
			t.Fatalf("begin block %d: %v", i+1, err)
		}
		resp, err := app.BlockEnd(ctx, BlockEndRequest{Fees: FeesInfo{ProcessingFees: 50}})
		if err != nil {
			t.Fatalf("end block %d: %v", i+1, err)
		}
		if i < 2 && resp.PaidEpochIndex != nil {
			t.Fatalf("premature payout at block %d: %+v", i+1, resp)
		}
		if i == 2 {
			if resp.CurrentEpochIndex != 1 || !resp.IsEpochChange {
				t.Fatalf("response = %+v, want change into epoch 1", resp)
			}
			if resp.PaidEpochIndex == nil || *resp.PaidEpochIndex != 0 {
				t.Fatalf("paid epoch = %v, want 0", resp.PaidEpochIndex)
			}
			if resp.MasternodesPaidCount != 1 {
				t.Fatalf("paid count = %d, want 1", resp.MasternodesPaidCount)
			}
		}
	}
}

func TestApplicationRejectsShortProposerHash(t *testing.T) {
	app, _ := newTestApplication(t, core.DefaultProposerPayoutDelay)
	ctx := context.Background()
	if _, err := app.InitChain(ctx, InitChainRequest{}); err != nil {
		t.Fatalf("init chain: %v", err)
	}
	_, err := app.BlockBegin(ctx, BlockBeginRequest{
		BlockHeight:       1,
		BlockTimeMs:       1_700_000_000_000,
		ProposerProTxHash: bytes.Repeat([]byte{0x11}, 31),
	})
	if err == nil {
		t.Fatalf("expected proposer hash length error")
	}
}

func TestNewApplicationRequiresPlatform(t *testing.T) {
	if _, err := NewApplication(nil); err == nil {
		t.Fatalf("expected error for nil platform")
	}
}
