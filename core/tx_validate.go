package core

import (
	"fmt"

	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm"
	"github.com/evmforge/evmcore/params"
)

// ValidateTransaction performs the structural checks that depend only on
// the transaction itself, never on block context or chain state (§4.7
// validate_transaction): intrinsic gas and the EIP-7623 calldata floor
// both fit under tx.gas, the nonce hasn't wrapped, init code respects
// EIP-3860, and the EIP-7825 per-tx gas cap is honored once active.
func ValidateTransaction(tx *types.Transaction, rules params.Rules) error {
	isCreate := tx.To() == nil

	if tx.Nonce() == ^uint64(0) {
		return ErrNonceMax
	}

	if rules.IsOsaka && tx.Gas() > MaxTransactionGas {
		return fmt.Errorf("%w: have %d, cap %d", ErrTxGasLimitExceeded, tx.Gas(), MaxTransactionGas)
	}

	if isCreate && uint64(len(tx.Data())) > vm.MaxInitCodeSize {
		return fmt.Errorf("%w: size %d", ErrMaxInitCodeSizeExceeded, len(tx.Data()))
	}

	authCount := uint64(len(tx.Authorizations()))
	igas := IntrinsicGas(tx.Data(), tx.AccessList(), isCreate, authCount, rules)
	if igas > tx.Gas() {
		return fmt.Errorf("%w: have %d, want %d", ErrIntrinsicGasTooLow, tx.Gas(), igas)
	}

	if rules.IsPrague {
		floor := CalldataFloorGas(tx.Data(), isCreate)
		if floor > tx.Gas() {
			return fmt.Errorf("%w: have %d, floor %d", ErrIntrinsicGasTooLow, tx.Gas(), floor)
		}
	}

	return nil
}
