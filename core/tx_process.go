package core

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm"
	"github.com/evmforge/evmcore/core/vm/num"
	"github.com/evmforge/evmcore/params"
	"github.com/evmforge/evmcore/precompiles"
)

// RefundQuotientPreLondon and RefundQuotient are the divisors applied to
// the gas-refund counter (§4.7): `gas_used / divisor` is the maximum
// refund a transaction may claim, tightened from 2 to 5 by EIP-3529.
const (
	RefundQuotientPreLondon uint64 = 2
	RefundQuotient          uint64 = 5
)

// ProcessTransaction executes one already-checked transaction against
// st (§4.7 process_transaction): it opens a transaction-scoped journal
// checkpoint, debits the upfront gas cost, pre-warms the EIP-2929
// accessed sets, applies any EIP-7702 authorizations, builds and runs
// the root CALL or CREATE message, settles gas refunds and the
// coinbase tip, finalizes scheduled SELFDESTRUCTs, sweeps EIP-161
// touched-empty accounts, and returns the resulting receipt. The gas
// pool is assumed to already have tx.Gas() reserved against it by the
// caller (check_transaction having confirmed it fits).
func ProcessTransaction(st *state.State, tx *types.Transaction, checked *CheckedTx, blockCtx vm.BlockContext, chainConfig *params.ChainConfig, rules params.Rules) (*types.Receipt, error) {
	sender := checked.Sender
	isCreate := tx.To() == nil

	st.BeginTransaction()
	st.MarkTransactionSnapshot()

	gasCost := new(num.U256).Mul(checked.EffectiveGasPrice, num.FromUint64(tx.Gas()))
	debitSenderBalance(st, sender, gasCost)

	var newAddr types.Address
	if isCreate {
		newAddr = crypto.CreateAddress(sender, st.GetAccount(sender).Nonce)
		if !rules.IsEIP158 {
			st.IncrementNonce(sender)
		}
	} else {
		st.IncrementNonce(sender)
	}

	active := precompiles.Active(rules)
	precompileAddrs := make([]types.Address, 0, len(active))
	for a := range active {
		precompileAddrs = append(precompileAddrs, a)
	}
	dst := tx.To()
	if isCreate {
		dst = &newAddr
	}
	st.PrepareAccessList(sender, dst, precompileAddrs, tx.AccessList())
	if rules.IsShanghai {
		// EIP-3651 (Shanghai) warms the coinbase too.
		st.AddAddressToAccessList(blockCtx.Coinbase)
	}

	if tx.Type() == types.SetCodeTxType {
		ApplyAuthorizations(st, tx.Authorizations(), rules.ChainID.Uint64())
	}

	authCount := uint64(len(tx.Authorizations()))
	igas := IntrinsicGas(tx.Data(), tx.AccessList(), isCreate, authCount, rules)
	gasLeft := tx.Gas() - igas

	txCtx := vm.TxContext{
		Origin:     sender,
		GasPrice:   checked.EffectiveGasPrice,
		BlobHashes: tx.BlobHashes(),
	}
	evm := vm.NewEVM(blockCtx, txCtx, st, chainConfig, vm.Config{Precompiles: active})

	var (
		ret             []byte
		gasRemaining    uint64
		contractAddress types.Address
		execErr         error
	)
	if isCreate {
		ret, contractAddress, gasRemaining, execErr = evm.Create(sender, tx.Data(), gasLeft, tx.Value(), newAddr)
	} else {
		ret, gasRemaining, execErr = evm.Call(vm.CallKindCall, sender, *tx.To(), tx.Data(), gasLeft, tx.Value(), false)
	}
	_ = ret

	gasUsed := igas + (gasLeft - gasRemaining)

	refund := st.Refund()
	quotient := RefundQuotient
	if !rules.IsLondon {
		quotient = RefundQuotientPreLondon
	}
	maxRefund := new(num.U256).Div(num.FromUint64(gasUsed), num.FromUint64(quotient))
	if refund.Cmp(maxRefund) > 0 {
		refund = maxRefund
	}
	gasUsed -= refund.Uint64()

	if rules.IsPrague {
		floor := CalldataFloorGas(tx.Data(), isCreate)
		if floor > gasUsed {
			gasUsed = floor
		}
	}

	leftover := tx.Gas() - gasUsed
	creditSenderBalance(st, sender, new(num.U256).Mul(checked.EffectiveGasPrice, num.FromUint64(leftover)))

	payCoinbase(st, blockCtx.Coinbase, blockCtx.BaseFee, checked.EffectiveGasPrice, gasUsed)

	st.FinalizeDestructions(rules.IsCancun)
	if rules.IsEIP158 {
		st.DestroyTouchedEmptyAccounts()
	}
	st.ClearTransientStorage()

	// A failed execution (revert or exceptional halt) has already had its
	// own state writes undone by the nested checkpoint evm.Call/evm.Create
	// takes internally (core/vm/evm.go); the outer checkpoint opened above
	// only wraps the gas debit, nonce bump, refund credit and coinbase tip,
	// none of which a failed transaction forfeits (§4.7, §8 conservation).
	// It is always committed, never rolled back, here.
	st.CommitTransaction()

	var status uint64
	if execErr == nil {
		status = types.ReceiptStatusSuccessful
	} else {
		status = types.ReceiptStatusFailed
	}
	logs := st.TxLogs()
	receipt := types.NewReceipt(status, gasUsed, logs)
	receipt.TxHash = tx.Hash()
	receipt.GasUsed = gasUsed
	receipt.EffectiveGasPrice = checked.EffectiveGasPrice
	receipt.Type = tx.Type()
	if isCreate && execErr == nil {
		receipt.ContractAddress = contractAddress
	}
	if blobGas := tx.BlobGas(); blobGas > 0 {
		receipt.BlobGasUsed = blobGas
		receipt.BlobGasPrice = checked.BlobGasPrice
	}
	receipt.Bloom = types.LogsBloom(logs)
	return receipt, nil
}

// debitSenderBalance subtracts amount from addr's balance directly: the
// gas payment has no on-chain counterparty account (it is split between
// a coinbase tip and, post-London, a burned base-fee portion), unlike a
// value transfer which always moves between two named accounts via
// State.MoveEther.
func debitSenderBalance(st *state.State, addr types.Address, amount *num.U256) {
	acc := st.GetAccount(addr)
	st.SetAccountBalance(addr, new(num.U256).Sub(acc.Balance, amount))
}

func creditSenderBalance(st *state.State, addr types.Address, amount *num.U256) {
	if amount.IsZero() {
		return
	}
	acc := st.GetAccount(addr)
	st.SetAccountBalance(addr, new(num.U256).Add(acc.Balance, amount))
}

// payCoinbase pays the block producer its share of the gas fee (§4.7):
// the full effective gas price pre-London, or just the priority-fee
// portion above base fee from London on (the base-fee portion is
// burned, i.e. credited to no account at all).
func payCoinbase(st *state.State, coinbase types.Address, baseFee, effectiveGasPrice *num.U256, gasUsed uint64) {
	var perGas *num.U256
	if baseFee != nil {
		perGas = new(num.U256).Sub(effectiveGasPrice, baseFee)
	} else {
		perGas = effectiveGasPrice
	}
	if perGas.IsZero() {
		return
	}
	tip := new(num.U256).Mul(perGas, num.FromUint64(gasUsed))
	creditSenderBalance(st, coinbase, tip)
}
