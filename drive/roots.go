package drive

import "dashplatform/store"

// RootTree tags the fixed top-level trees of the platform state. Each
// tag is a single byte key under the store root.
type RootTree byte

const (
	RootIdentities                  RootTree = 0
	RootContractDocuments           RootTree = 1
	RootPublicKeyHashesToIdentities RootTree = 2
	RootSpentAssetLockTransactions  RootTree = 3
	RootPools                       RootTree = 4
	RootWithdrawalTransactions      RootTree = 5
)

func (r RootTree) String() string {
	switch r {
	case RootIdentities:
		return "identities"
	case RootContractDocuments:
		return "contract-documents"
	case RootPublicKeyHashesToIdentities:
		return "pubkey-hashes"
	case RootSpentAssetLockTransactions:
		return "spent-asset-locks"
	case RootPools:
		return "pools"
	case RootWithdrawalTransactions:
		return "withdrawals"
	default:
		return "unknown"
	}
}

// Key returns the one-byte root key of the tree.
func (r RootTree) Key() []byte {
	return []byte{byte(r)}
}

// Path returns the tree's path under the store root.
func (r RootTree) Path() store.Path {
	return store.NewPath(r.Key())
}

// rootTrees lists every top-level tree in tag order.
var rootTrees = []RootTree{
	RootIdentities,
	RootContractDocuments,
	RootPublicKeyHashesToIdentities,
	RootSpentAssetLockTransactions,
	RootPools,
	RootWithdrawalTransactions,
}
