package core

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/evmforge/evmcore/core/types"
)

// deriveRoot builds a Merkle-Patricia trie keyed by RLP(index) over n
// items and returns its root hash, mirroring how go-ethereum derives
// the transactions/receipts/withdrawals roots (DeriveSha). The trie
// implementation itself is consumed through this one narrow call
// (go-ethereum's StackTrie, which needs no backing database to produce
// just a root) rather than reimplemented, per this module's scope
// (§1 Non-goals exclude the MPT itself).
func deriveRoot(n int, encode func(i int) []byte) types.Hash {
	t := trie.NewStackTrie(nil)
	for i := 0; i < n; i++ {
		key, _ := rlp.EncodeToBytes(uint(i))
		t.Update(key, encode(i))
	}
	return t.Hash()
}

// ReceiptsRoot computes a block's receipts trie root.
func ReceiptsRoot(receipts []*types.Receipt) types.Hash {
	return deriveRoot(len(receipts), func(i int) []byte {
		b, _ := rlp.EncodeToBytes(receipts[i])
		return b
	})
}

// TransactionsRoot computes a block's transactions trie root.
func TransactionsRoot(txs []*types.Transaction) types.Hash {
	return deriveRoot(len(txs), func(i int) []byte {
		b, _ := types.EncodeRLP(txs[i])
		return b
	})
}

// WithdrawalsRoot computes a block's withdrawals trie root (EIP-4895).
// A nil slice (pre-Shanghai) and an empty-but-non-nil slice (post-
// Shanghai, no withdrawals) both hash as the root of zero entries.
func WithdrawalsRoot(withdrawals []*types.Withdrawal) types.Hash {
	return deriveRoot(len(withdrawals), func(i int) []byte {
		b, _ := rlp.EncodeToBytes(withdrawals[i])
		return b
	})
}
