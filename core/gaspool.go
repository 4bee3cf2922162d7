// Package core implements the transaction pipeline and block executor
// (§4.7, §4.8): intrinsic gas, validate/check/process_transaction, and
// apply_body, built on top of core/vm and core/state.
package core

import "errors"

// ErrGasPoolExhausted is returned by GasPool.SubGas when the block's
// remaining gas cannot cover a transaction's gas limit.
var ErrGasPoolExhausted = errors.New("gas limit reached")

// GasPool tracks the gas available to the block executor for the
// transactions remaining in a block (§4.8 step 2: "tx.gas ≤
// block_gas_remaining").
type GasPool uint64

// AddGas makes gas available for execution.
func (gp *GasPool) AddGas(amount uint64) *GasPool {
	if uint64(*gp)+amount < uint64(*gp) {
		panic("gas pool pushed above uint64")
	}
	*gp += GasPool(amount)
	return gp
}

// SubGas deducts the given amount from the pool if enough gas is
// remaining, returning ErrGasPoolExhausted otherwise.
func (gp *GasPool) SubGas(amount uint64) error {
	if uint64(*gp) < amount {
		return ErrGasPoolExhausted
	}
	*gp -= GasPool(amount)
	return nil
}

// Gas returns the amount of gas remaining in the pool.
func (gp *GasPool) Gas() uint64 {
	return uint64(*gp)
}
