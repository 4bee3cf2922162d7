package core

import (
	"testing"

	"github.com/evmforge/evmcore/core/types"
)

func TestEmptyRootsMatchNoEntries(t *testing.T) {
	if got, want := ReceiptsRoot(nil), deriveRoot(0, nil); got != want {
		t.Fatalf("ReceiptsRoot(nil) = %s, want %s", got.Hex(), want.Hex())
	}
	if got, want := WithdrawalsRoot(nil), deriveRoot(0, nil); got != want {
		t.Fatalf("WithdrawalsRoot(nil) = %s, want %s", got.Hex(), want.Hex())
	}
	if got, want := TransactionsRoot(nil), deriveRoot(0, nil); got != want {
		t.Fatalf("TransactionsRoot(nil) = %s, want %s", got.Hex(), want.Hex())
	}
}

func TestWithdrawalsRootNilAndEmptyAreIdentical(t *testing.T) {
	// Pre-Shanghai (nil slice) and post-Shanghai-but-empty (non-nil,
	// zero-length slice) must derive the same root: both represent zero
	// withdrawal entries in the trie.
	nilRoot := WithdrawalsRoot(nil)
	emptyRoot := WithdrawalsRoot([]*types.Withdrawal{})
	if nilRoot != emptyRoot {
		t.Fatalf("nil and empty withdrawals must hash identically: nil=%s empty=%s", nilRoot.Hex(), emptyRoot.Hex())
	}
}

func TestWithdrawalsRootChangesWithContent(t *testing.T) {
	w1 := []*types.Withdrawal{{Index: 1, ValidatorIndex: 1, Address: types.Address{1}, AmountGwei: 100}}
	w2 := []*types.Withdrawal{{Index: 1, ValidatorIndex: 1, Address: types.Address{1}, AmountGwei: 200}}

	r1 := WithdrawalsRoot(w1)
	r2 := WithdrawalsRoot(w2)
	if r1 == r2 {
		t.Fatalf("different withdrawal amounts must not hash to the same root")
	}
	if r1 == WithdrawalsRoot(nil) {
		t.Fatalf("a non-empty withdrawal set must not hash the same as an empty one")
	}
}

func TestReceiptsRootChangesWithContent(t *testing.T) {
	r1 := []*types.Receipt{types.NewReceipt(types.ReceiptStatusSuccessful, 21000, nil)}
	r2 := []*types.Receipt{types.NewReceipt(types.ReceiptStatusFailed, 21000, nil)}

	if ReceiptsRoot(r1) == ReceiptsRoot(r2) {
		t.Fatalf("a successful and a failed receipt must not share a root")
	}
}
