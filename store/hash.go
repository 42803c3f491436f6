package store

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/crypto"
)

// Subtree digests fold the sorted entries of a tree with Keccak-256:
// every entry contributes its length-prefixed key, its kind byte and its
// own digest. Items and references hash their encoded payload; subtrees
// contribute the digest stored on their node record, so the root digest
// commits to the whole hierarchy.

func emptyTreeHash() []byte {
	return crypto.Keccak256()
}

func itemDigest(value []byte) []byte {
	return crypto.Keccak256([]byte{byte(KindItem)}, value)
}

func referenceDigest(e Element) []byte {
	buf := []byte{byte(KindReference)}
	for _, seg := range e.RefPath {
		buf = binary.AppendUvarint(buf, uint64(len(seg)))
		buf = append(buf, seg...)
	}
	buf = binary.AppendUvarint(buf, uint64(len(e.RefKey)))
	buf = append(buf, e.RefKey...)
	return crypto.Keccak256(buf)
}

// foldEntry absorbs one child entry into the running tree hash input.
func foldEntry(buf []byte, key []byte, kind Kind, digest []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(key)))
	buf = append(buf, key...)
	buf = append(buf, byte(kind))
	return append(buf, digest...)
}

func treeHash(folded []byte) []byte {
	if len(folded) == 0 {
		return emptyTreeHash()
	}
	return crypto.Keccak256(folded)
}
