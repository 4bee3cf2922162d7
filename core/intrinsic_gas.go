package core

import (
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/params"
)

// Base per-transaction gas costs (§4.7 intrinsic gas).
const (
	TxGas            uint64 = 21000
	TxGasContractCreation uint64 = 53000
	TxDataZeroGas    uint64 = 4
	TxDataNonZeroGas uint64 = 16

	// TxCreateGas is the extra gas charged for contract-creation
	// transactions, folded into TxGasContractCreation above but kept as
	// a named constant for callers that build the total incrementally.
	TxCreateGas uint64 = TxGasContractCreation - TxGas

	// InitCodeWordGas is the EIP-3860 per-32-byte-word surcharge on
	// contract-creation init code.
	InitCodeWordGas uint64 = 2

	// TxAccessListAddressGas and TxAccessListStorageKeyGas are the
	// EIP-2930 access-list pricing constants.
	TxAccessListAddressGas    uint64 = 2400
	TxAccessListStorageKeyGas uint64 = 1900

	// PerAuthBaseCost is the EIP-7702 per-authorization-tuple base cost,
	// charged for every entry in a set-code transaction's authorization
	// list regardless of whether the delegator account already exists.
	PerAuthBaseCost uint64 = 25000

	// MaxTransactionGas is the EIP-7825 per-transaction gas limit cap,
	// active from Osaka.
	MaxTransactionGas uint64 = 1 << 24

	// TotalCostFloorPerToken is the EIP-7623 floor-gas cost per calldata
	// token (active from Prague).
	TotalCostFloorPerToken uint64 = 10
)

// calldataTokens counts EIP-7623 calldata tokens: one per zero byte,
// four per non-zero byte.
func calldataTokens(data []byte) uint64 {
	var tokens uint64
	for _, b := range data {
		if b == 0 {
			tokens++
		} else {
			tokens += 4
		}
	}
	return tokens
}

// calldataGasCost computes the pre-EIP-7623 standard per-byte calldata
// charge (EIP-2028: 4 gas/zero byte, 16 gas/non-zero byte).
func calldataGasCost(data []byte) uint64 {
	var gas uint64
	for _, b := range data {
		if b == 0 {
			gas += TxDataZeroGas
		} else {
			gas += TxDataNonZeroGas
		}
	}
	return gas
}

// accessListGas computes the EIP-2930 access-list gas surcharge.
func accessListGas(list types.AccessList) uint64 {
	var gas uint64
	for _, tuple := range list {
		gas += TxAccessListAddressGas
		gas += uint64(len(tuple.StorageKeys)) * TxAccessListStorageKeyGas
	}
	return gas
}

// IntrinsicGas computes the base gas cost of a transaction before any EVM
// execution begins (§4.7): the flat base cost, the contract-creation
// surcharge, the per-byte calldata cost (with the EIP-3860 init-code word
// surcharge when creating post-Shanghai), the EIP-2930 access-list cost,
// and the EIP-7702 per-authorization cost.
func IntrinsicGas(data []byte, accessList types.AccessList, isCreate bool, authCount uint64, rules params.Rules) uint64 {
	gas := TxGas
	if isCreate {
		gas += TxCreateGas
	}
	gas += calldataGasCost(data)
	if isCreate && rules.IsShanghai {
		words := (uint64(len(data)) + 31) / 32
		gas += words * InitCodeWordGas
	}
	gas += accessListGas(accessList)
	gas += authCount * PerAuthBaseCost
	return gas
}

// CalldataFloorGas computes the EIP-7623 calldata floor gas: a minimum
// total transaction cost (base + tokens*floor-rate [+ creation surcharge])
// that applies regardless of how cheap the standard intrinsic-gas
// computation came out. Active from Prague.
func CalldataFloorGas(data []byte, isCreate bool) uint64 {
	floor := TxGas + calldataTokens(data)*TotalCostFloorPerToken
	if isCreate {
		floor += TxCreateGas
	}
	return floor
}
