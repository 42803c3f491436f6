package core

import (
	"dashplatform/drive"
	"dashplatform/fees"
	"dashplatform/observability/logging"
	"dashplatform/rewards"
	"dashplatform/store"
)

// DistributionInfo reports the proposer payout that ran during one
// block.
type DistributionInfo struct {
	// ProposersPaidCount is how many proposers received credits.
	ProposersPaidCount uint16
	// PaidEpochIndex is the epoch that was paid out, meaningful when
	// EpochPaid is set.
	PaidEpochIndex uint16
	EpochPaid      bool
	// CreditsPaid is the total amount credited to proposer identities.
	CreditsPaid uint64
	// FeeLeftovers is the payout rounding remainder; it flows back into
	// the current epoch's processing credits.
	FeeLeftovers fees.FixedPoint
}

// addDistributeFeesOps scans unpaid epochs from the payout cursor and
// pays the first one that has proposers and is past the maturity
// delay. At most one epoch is paid per block.
func (p *Platform) addDistributeFeesOps(batch *store.Batch, epoch EpochInfo, height uint64, tx *store.Transaction) (DistributionInfo, error) {
	cursor, err := p.drive.PayoutCursor(tx)
	if err != nil {
		return DistributionInfo{}, err
	}
	for index := uint32(cursor); index < uint32(epoch.CurrentIndex); index++ {
		unpaid := drive.NewEpoch(uint16(index))
		empty, err := p.drive.EpochProposersEmpty(unpaid, tx)
		if err != nil {
			return DistributionInfo{}, err
		}
		if empty {
			continue
		}
		startHeight, err := p.drive.EpochStartBlockHeight(unpaid, tx)
		if err != nil {
			return DistributionInfo{}, err
		}
		if height < startHeight || height-startHeight < p.payoutDelay {
			// Start heights rise with the index, so every later epoch
			// is younger still.
			return DistributionInfo{}, nil
		}
		return p.addEpochPayoutOps(batch, unpaid, tx)
	}
	return DistributionInfo{}, nil
}

// addEpochPayoutOps splits the epoch's processing credits between its
// proposers pro rata by blocks produced, credits each identity, and
// retires the epoch's pools.
func (p *Platform) addEpochPayoutOps(batch *store.Batch, unpaid drive.Epoch, tx *store.Transaction) (DistributionInfo, error) {
	pool, err := p.drive.EpochProcessingCredits(unpaid, tx)
	if err != nil {
		return DistributionInfo{}, err
	}
	proposers, err := p.drive.EpochProposers(unpaid, 0, tx)
	if err != nil {
		return DistributionInfo{}, err
	}

	split := rewards.Split(pool, proposers)
	for _, share := range split.Shares {
		if err := p.drive.AddCreditToIdentityOps(batch, share.ProTxHash, share.Amount, tx); err != nil {
			return DistributionInfo{}, err
		}
		p.log.Debug("proposer paid",
			logging.Epoch(unpaid.Index),
			logging.Hash("proposer", share.ProTxHash),
			"credits", share.Amount,
			"checksum", rewards.PayoutChecksum(unpaid.Index, share.ProTxHash, share.Amount),
		)
	}
	unpaid.AddMarkPaidOps(batch)
	drive.AddPayoutCursorOp(batch, unpaid.Index+1)

	return DistributionInfo{
		ProposersPaidCount: uint16(len(split.Shares)),
		PaidEpochIndex:     unpaid.Index,
		EpochPaid:          true,
		CreditsPaid:        split.TotalAssigned,
		FeeLeftovers:       fees.FixedPointFromInt(split.Leftover),
	}, nil
}
