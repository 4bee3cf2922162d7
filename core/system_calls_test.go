package core

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
)

func TestProcessBeaconBlockRoot(t *testing.T) {
	st := state.New()
	root := common.HexToHash("0xabcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890")

	ProcessBeaconBlockRoot(st, &root, 1000)

	timestampSlot := uint64ToHash(1000 % beaconRootsHistoryBufferLength)
	rootSlot := uint64ToHash(1000%beaconRootsHistoryBufferLength + beaconRootsHistoryBufferLength)

	got := st.GetStorage(BeaconRootsAddress, timestampSlot)
	if got.Uint64() != 1000 {
		t.Fatalf("timestamp slot: got %d, want 1000", got.Uint64())
	}
	gotRoot := st.GetStorage(BeaconRootsAddress, rootSlot).Bytes32()
	if types.BytesToHash(gotRoot[:]) != root {
		t.Fatalf("root slot mismatch: got %x, want %x", gotRoot, root)
	}
}

func TestProcessBeaconBlockRootNil(t *testing.T) {
	st := state.New()
	ProcessBeaconBlockRoot(st, nil, 1000)
	if st.AccountExists(BeaconRootsAddress) {
		t.Fatalf("nil parent beacon root must not touch the contract account")
	}
}

func TestProcessBeaconBlockRootRingBufferWraps(t *testing.T) {
	st := state.New()
	root1 := common.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111"[2:66])
	root2 := common.HexToHash("0x2222222222222222222222222222222222222222222222222222222222222222"[2:66])

	ProcessBeaconBlockRoot(st, &root1, 100)
	wrapped := uint64(100 + beaconRootsHistoryBufferLength)
	ProcessBeaconBlockRoot(st, &root2, wrapped)

	rootSlot := uint64ToHash(100%beaconRootsHistoryBufferLength + beaconRootsHistoryBufferLength)
	got := st.GetStorage(BeaconRootsAddress, rootSlot).Bytes32()
	if types.BytesToHash(got[:]) != root2 {
		t.Fatalf("ring buffer should overwrite old root with the wrapped write")
	}
}

func TestProcessParentBlockHash(t *testing.T) {
	st := state.New()
	parentHash := common.HexToHash("0xdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	ProcessParentBlockHash(st, 42, parentHash)

	slot := uint64ToHash(42 % historyServeWindow)
	got := st.GetStorage(HistoryStorageAddress, slot).Bytes32()
	if types.BytesToHash(got[:]) != parentHash {
		t.Fatalf("parent hash slot mismatch: got %x, want %x", got, parentHash)
	}
}

func TestUint64ToHash(t *testing.T) {
	tests := []struct {
		in   uint64
		want types.Hash
	}{
		{0, types.Hash{}},
		{1, common.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000001")},
		{255, common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000ff")},
	}
	for _, tt := range tests {
		if got := uint64ToHash(tt.in); got != tt.want {
			t.Errorf("uint64ToHash(%d): got %s, want %s", tt.in, got.Hex(), tt.want.Hex())
		}
	}
}
