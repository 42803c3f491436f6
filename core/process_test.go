package core

import (
	"context"
	"errors"
	"testing"

	"dashplatform/drive"
	"dashplatform/fees"
	"dashplatform/store"
)

func TestFirstBlockOpensEpochZero(t *testing.T) {
	p := newChainPlatform(t, quietParams())
	chain := newChainDriver(t, p, genesisMs)

	res := chain.run(hashOf(0x11), 0, 100, 2000)

	if res.Epoch.CurrentIndex != 0 || !res.Epoch.IsEpochChange {
		t.Fatalf("epoch = %d change = %v, want 0 and true", res.Epoch.CurrentIndex, res.Epoch.IsEpochChange)
	}
	if res.Distribution.EpochPaid || res.Distribution.ProposersPaidCount != 0 {
		t.Fatalf("unexpected payout on the first block: %+v", res.Distribution)
	}

	d := p.Drive()
	g, ok, err := d.GenesisTime(nil)
	if err != nil || !ok {
		t.Fatalf("genesis time: ok=%v err=%v", ok, err)
	}
	if g != genesisMs {
		t.Fatalf("genesis time = %d, want %d", g, genesisMs)
	}

	pool, err := d.StorageDistributionPool(nil)
	if err != nil {
		t.Fatalf("storage pool: %v", err)
	}
	if pool != 2000 {
		t.Fatalf("storage pool = %d, want 2000", pool)
	}

	epoch0 := drive.NewEpoch(0)
	pp, err := d.EpochProcessingCredits(epoch0, nil)
	if err != nil {
		t.Fatalf("processing credits: %v", err)
	}
	if pp != 100 {
		t.Fatalf("processing credits = %d, want 100", pp)
	}

	count, err := d.EpochProposerBlockCount(epoch0, hashOf(0x11), nil)
	if err != nil {
		t.Fatalf("proposer count: %v", err)
	}
	if count != 1 {
		t.Fatalf("proposer count = %d, want 1", count)
	}

	height, err := d.EpochStartBlockHeight(epoch0, nil)
	if err != nil {
		t.Fatalf("start height: %v", err)
	}
	if height != 1 {
		t.Fatalf("start height = %d, want 1", height)
	}
	multiplier, err := d.EpochFeeMultiplier(epoch0, nil)
	if err != nil {
		t.Fatalf("fee multiplier: %v", err)
	}
	if multiplier != p.DefaultFeeMultiplier() {
		t.Fatalf("fee multiplier = %d, want %d", multiplier, p.DefaultFeeMultiplier())
	}
}

func TestSecondBlockAccumulatesFees(t *testing.T) {
	p := newChainPlatform(t, quietParams())
	chain := newChainDriver(t, p, genesisMs)
	chain.run(hashOf(0x11), 0, 100, 2000)

	res := chain.run(hashOf(0x11), 60_000, 50, 1000)

	if res.Epoch.CurrentIndex != 0 || res.Epoch.IsEpochChange {
		t.Fatalf("epoch = %d change = %v, want 0 and false", res.Epoch.CurrentIndex, res.Epoch.IsEpochChange)
	}

	d := p.Drive()
	epoch0 := drive.NewEpoch(0)
	pp, err := d.EpochProcessingCredits(epoch0, nil)
	if err != nil {
		t.Fatalf("processing credits: %v", err)
	}
	if pp != 150 {
		t.Fatalf("processing credits = %d, want 150", pp)
	}
	pool, err := d.StorageDistributionPool(nil)
	if err != nil {
		t.Fatalf("storage pool: %v", err)
	}
	if pool != 3000 {
		t.Fatalf("storage pool = %d, want 3000", pool)
	}
	count, err := d.EpochProposerBlockCount(epoch0, hashOf(0x11), nil)
	if err != nil {
		t.Fatalf("proposer count: %v", err)
	}
	if count != 2 {
		t.Fatalf("proposer count = %d, want 2", count)
	}
}

func TestEpochChangeSpreadsStoragePool(t *testing.T) {
	p := newChainPlatform(t, quietParams())
	chain := newChainDriver(t, p, genesisMs)
	chain.run(hashOf(0x11), 0, 100, 2000)
	chain.run(hashOf(0x11), 60_000, 50, 1000)

	// Block 3 lands one millisecond into epoch 1.
	res := chain.run(hashOf(0x22), EpochLengthMs-60_000+1, 10, 0)

	if res.Epoch.CurrentIndex != 1 || !res.Epoch.IsEpochChange {
		t.Fatalf("epoch = %d change = %v, want 1 and true", res.Epoch.CurrentIndex, res.Epoch.IsEpochChange)
	}

	d := p.Drive()
	pool, err := d.StorageDistributionPool(nil)
	if err != nil {
		t.Fatalf("storage pool: %v", err)
	}
	if pool != 0 {
		t.Fatalf("storage pool = %d, want 0 after distribution", pool)
	}

	var sum, first uint64
	for i := 1; i <= fees.StorageDistributionEpochs; i++ {
		credits, err := d.EpochStorageCredits(drive.NewEpoch(uint16(i)), nil)
		if err != nil {
			t.Fatalf("storage credits of epoch %d: %v", i, err)
		}
		if i == 1 {
			first = credits
		} else if credits > first {
			t.Fatalf("epoch %d share %d exceeds first share %d", i, credits, first)
		}
		sum += credits
	}
	if sum != 3000 {
		t.Fatalf("distributed sum = %d, want 3000", sum)
	}

	pp, err := d.EpochProcessingCredits(drive.NewEpoch(1), nil)
	if err != nil {
		t.Fatalf("processing credits: %v", err)
	}
	if pp != 10 {
		t.Fatalf("processing credits = %d, want 10", pp)
	}

	// The horizon pool one thousand epochs ahead was created, untouched
	// by the distribution window.
	horizon, err := d.EpochStorageCredits(drive.NewEpoch(1001), nil)
	if err != nil {
		t.Fatalf("horizon pool: %v", err)
	}
	if horizon != 0 {
		t.Fatalf("horizon pool credits = %d, want 0", horizon)
	}
	if _, err := d.EpochStorageCredits(drive.NewEpoch(1002), nil); !errors.Is(err, store.ErrPathNotFound) {
		t.Fatalf("epoch 1002 err = %v, want path not found", err)
	}

	// Epoch 0 is not paid yet; its pools survive the change.
	old, err := d.EpochProcessingCredits(drive.NewEpoch(0), nil)
	if err != nil {
		t.Fatalf("old processing credits: %v", err)
	}
	if old != 150 {
		t.Fatalf("old processing credits = %d, want 150", old)
	}

	start, err := d.EpochStartTime(drive.NewEpoch(1), nil)
	if err != nil {
		t.Fatalf("epoch 1 start time: %v", err)
	}
	if want := genesisMs + EpochLengthMs + 1; start != want {
		t.Fatalf("epoch 1 start time = %d, want %d", start, want)
	}
}

func TestInitChainTwiceFails(t *testing.T) {
	p := newChainPlatform(t, quietParams())
	err := p.InitChain(context.Background())
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("err = %v, want already exists", err)
	}
}

func TestEpochChangeRejectsUnsupportedMultiplier(t *testing.T) {
	p := newChainPlatform(t, quietParams())
	ctx := context.Background()
	block := BlockInfo{Height: 1, TimeMs: genesisMs, ProposerProTxHash: hashOf(0x11)}
	if err := p.BlockBegin(ctx, block); err != nil {
		t.Fatalf("begin: %v", err)
	}
	_, err := p.BlockEnd(ctx, BlockFees{ProcessingFees: 100, FeeMultiplier: 0x80})
	if !errors.Is(err, fees.ErrMultiplierNotSupported) {
		t.Fatalf("err = %v, want multiplier not supported", err)
	}

	// The aborted block left no trace and cleared the context.
	if _, ok, err := p.Drive().GenesisTime(nil); err != nil || ok {
		t.Fatalf("genesis time after abort: ok=%v err=%v", ok, err)
	}
	if _, err := p.BlockEnd(ctx, BlockFees{FeeMultiplier: 4}); !errors.Is(err, ErrNoBlockContext) {
		t.Fatalf("second end err = %v, want no block context", err)
	}
}
