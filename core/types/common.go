// Package types defines the data model shared by the state, vm, and
// transaction-pipeline packages: addresses, hashes, logs, accounts,
// transactions, receipts, withdrawals and authorizations (§3).
package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Address and Hash are fixed-length byte containers. The Keccak-256 hash
// function, RLP codec and Merkle-Patricia trie that operate on them are
// explicitly out of this core's scope (spec §1) and are consumed through
// go-ethereum's common/crypto packages, same as the teacher lineage.
type (
	Address = common.Address
	Hash    = common.Hash
)

// BytesToAddress and BytesToHash are re-exported for call sites that only
// import core/types and shouldn't need to know about common directly.
func BytesToAddress(b []byte) Address { return common.BytesToAddress(b) }
func BytesToHash(b []byte) Hash       { return common.BytesToHash(b) }

// StorageKey identifies a single storage slot within an account.
type StorageKey = Hash

// BloomByteLength is the number of bytes in a 2048-bit log bloom filter.
const BloomByteLength = 256

// Bloom is the 2048-bit log bloom filter carried in headers and receipts.
type Bloom [BloomByteLength]byte

// AccessTuple is one entry of an EIP-2930/2718 access list: an address
// plus the storage keys to pre-warm for it.
type AccessTuple struct {
	Address     Address
	StorageKeys []Hash
}

// AccessList is the decoded form of a transaction's access list.
type AccessList []AccessTuple

// Authorization is one EIP-7702 "set code" authorization tuple: the
// signer delegates address Address's code to be executed whenever the
// signer's own account (the delegator) is called.
type Authorization struct {
	ChainID uint64
	Address Address
	Nonce   uint64
	V       uint8
	R, S    Hash
}
