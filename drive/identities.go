package drive

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"dashplatform/fees"
	"dashplatform/store"
)

// Identity records live in the Identities root tree keyed by the 32-byte
// pro-tx-hash. The engine only ever credits balances; everything else
// about identities belongs to other subsystems.

type storedIdentity struct {
	Balance *uint256.Int
}

func encodeIdentity(balance *uint256.Int) ([]byte, error) {
	return rlp.EncodeToBytes(&storedIdentity{Balance: balance})
}

func decodeIdentity(raw []byte) (*uint256.Int, error) {
	var stored storedIdentity
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("drive: decode identity: %w", store.ErrCorrupted)
	}
	if stored.Balance == nil {
		return uint256.NewInt(0), nil
	}
	return stored.Balance, nil
}

// IdentityBalance returns the identity's credit balance, zero when no
// record exists yet.
func (d *Drive) IdentityBalance(id [32]byte, tx *store.Transaction) (*uint256.Int, error) {
	el, err := d.store.Get(RootIdentities.Path(), id[:], tx)
	if errors.Is(err, store.ErrPathKeyNotFound) {
		return uint256.NewInt(0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("drive: identity %x: %w", id[:4], err)
	}
	raw, err := el.Item()
	if err != nil {
		return nil, fmt.Errorf("drive: identity %x: %w", id[:4], err)
	}
	return decodeIdentity(raw)
}

// AddCreditToIdentityOps reads the identity's balance through tx and
// queues a write of balance plus amount. An identity without a record
// gets one starting from zero.
func (d *Drive) AddCreditToIdentityOps(batch *store.Batch, id [32]byte, amount uint64, tx *store.Transaction) error {
	balance, err := d.IdentityBalance(id, tx)
	if err != nil {
		return err
	}
	updated := new(uint256.Int)
	if _, overflow := updated.AddOverflow(balance, uint256.NewInt(amount)); overflow {
		return fmt.Errorf("drive: identity %x balance: %w", id[:4], fees.ErrOverflow)
	}
	raw, err := encodeIdentity(updated)
	if err != nil {
		return err
	}
	batch.Replace(RootIdentities.Path(), id[:], store.NewItem(raw))
	return nil
}
