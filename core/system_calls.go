package core

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

// SystemAddress is the caller used for every pre/post-block system
// transaction (§6): 0xfffffffffffffffffffffffffffffffffffffffe.
var SystemAddress = common.HexToAddress("0xfffffffffffffffffffffffffffffffffffffffe")

// SystemTransactionGas is the gas made available to a system call,
// charged against neither the block's nor any transaction's gas pool.
const SystemTransactionGas uint64 = 30_000_000

// BeaconRootsAddress is the EIP-4788 beacon-root system contract.
var BeaconRootsAddress = common.HexToAddress("0x000F3df6D732807Ef1319fB7B8bB8522d0Beac02")

// HistoryStorageAddress is the EIP-2935 block-hash history system contract.
var HistoryStorageAddress = common.HexToAddress("0x0000F90827F1C53a10cb7A02335B175320002935")

const (
	beaconRootsHistoryBufferLength = 8191
	historyServeWindow             = 8192
)

func uint64ToHash(v uint64) types.Hash {
	var h types.Hash
	binary.BigEndian.PutUint64(h[24:], v)
	return h
}

// ProcessBeaconBlockRoot implements EIP-4788 (§4.8 step 1): stores the
// parent beacon block root into the beacon-roots contract's storage
// ring buffer before any user transaction runs. A real system call
// would CALL the contract's deployed bytecode with caller=SystemAddress
// and SystemTransactionGas; since that bytecode isn't part of this
// module's scope (no Solidity compiler, §1 Non-goals), the ring-buffer
// write the contract performs is reproduced directly against storage,
// matching the buffer layout EIP-4788 specifies.
func ProcessBeaconBlockRoot(st *state.State, parentBeaconRoot *types.Hash, timestamp uint64) {
	if parentBeaconRoot == nil {
		return
	}
	if !st.AccountExists(BeaconRootsAddress) {
		st.CreateAccount(BeaconRootsAddress)
	}
	timestampIdx := timestamp % beaconRootsHistoryBufferLength
	rootIdx := timestampIdx + beaconRootsHistoryBufferLength

	st.SetStorage(BeaconRootsAddress, uint64ToHash(timestampIdx), num.FromUint64(timestamp))
	st.SetStorage(BeaconRootsAddress, uint64ToHash(rootIdx), num.FromBEBytes32(parentBeaconRoot[:]))
}

// ProcessParentBlockHash implements EIP-2935 (§4.8 step 1): records the
// parent block's hash into the history-storage contract's ring buffer,
// the same simplification as ProcessBeaconBlockRoot above (direct
// storage write standing in for a system CALL to undeployed bytecode).
func ProcessParentBlockHash(st *state.State, parentNumber uint64, parentHash types.Hash) {
	if !st.AccountExists(HistoryStorageAddress) {
		st.CreateAccount(HistoryStorageAddress)
	}
	slot := parentNumber % historyServeWindow
	st.SetStorage(HistoryStorageAddress, uint64ToHash(slot), num.FromBEBytes32(parentHash[:]))
}
