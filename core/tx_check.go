package core

import (
	"fmt"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
	"github.com/evmforge/evmcore/params"
)

// MaxBlobsPerTx is the EIP-4844 per-transaction blob count cap (Cancun).
const MaxBlobsPerTx = 6

// VersionedHashVersionKZG is the one legal version byte for EIP-4844
// blob versioned hashes (§6).
const VersionedHashVersionKZG = 0x01

// CheckedTx bundles the facts check_transaction resolves once per
// transaction and that process_transaction needs without recomputing:
// the recovered sender and the fee actually paid per unit gas.
type CheckedTx struct {
	Sender            types.Address
	EffectiveGasPrice *num.U256
	BlobGasPrice      *num.U256
}

// CheckTransaction performs every contextual validity check (§4.7
// check_transaction): gas/blob-gas pool availability, sender recovery,
// fee-market bounds against the block's base fee, blob-specific checks,
// fork-gated type availability, the EIP-3607 sender-EOA requirement, an
// exact nonce match, and the upfront balance requirement.
func CheckTransaction(st *state.State, tx *types.Transaction, chainID uint64, rules params.Rules, baseFee, blobBaseFee *num.U256, gasPool, blobGasPool *GasPool) (*CheckedTx, error) {
	if err := typeGate(tx.Type(), rules); err != nil {
		return nil, err
	}

	isCreate := tx.To() == nil
	if isCreate && (tx.Type() == types.BlobTxType) {
		return nil, ErrBlobTxCreate
	}
	if isCreate && tx.Type() == types.SetCodeTxType {
		return nil, ErrSetCodeTxCreate
	}
	if tx.Type() == types.SetCodeTxType && len(tx.Authorizations()) == 0 {
		return nil, ErrEmptyAuthorizationList
	}

	if tx.Gas() > gasPool.Gas() {
		return nil, fmt.Errorf("%w: tx %d, pool %d", ErrGasLimitExceeded, tx.Gas(), gasPool.Gas())
	}
	if blobGas := tx.BlobGas(); blobGas > 0 {
		if blobGas > blobGasPool.Gas() {
			return nil, fmt.Errorf("%w: tx %d, pool %d", ErrBlobGasLimitExceeded, blobGas, blobGasPool.Gas())
		}
	}

	sender, err := types.Sender(tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSender, err)
	}

	isTyped := tx.Type() != types.LegacyTxType && tx.Type() != types.AccessListTxType
	var effectiveGasPrice *num.U256
	if isTyped && baseFee != nil {
		if tx.GasFeeCap().Cmp(tx.GasTipCap()) < 0 {
			return nil, fmt.Errorf("%w: tip %s, cap %s", ErrTipAboveFeeCap, tx.GasTipCap(), tx.GasFeeCap())
		}
		if tx.GasFeeCap().Cmp(baseFee) < 0 {
			return nil, fmt.Errorf("%w: feeCap %s, baseFee %s", ErrFeeCapTooLow, tx.GasFeeCap(), baseFee)
		}
		tip := new(num.U256).Sub(tx.GasFeeCap(), baseFee)
		if tip.Cmp(tx.GasTipCap()) > 0 {
			tip = tx.GasTipCap()
		}
		effectiveGasPrice = new(num.U256).Add(baseFee, tip)
	} else {
		if baseFee != nil && tx.GasPrice().Cmp(baseFee) < 0 {
			return nil, fmt.Errorf("%w: gasPrice %s, baseFee %s", ErrFeeCapTooLow, tx.GasPrice(), baseFee)
		}
		effectiveGasPrice = new(num.U256).Set(tx.GasPrice())
	}

	var perBlobGasPrice *num.U256
	if tx.Type() == types.BlobTxType {
		hashes := tx.BlobHashes()
		if len(hashes) == 0 {
			return nil, ErrNoBlobs
		}
		if len(hashes) > MaxBlobsPerTx {
			return nil, fmt.Errorf("%w: %d", ErrTooManyBlobs, len(hashes))
		}
		for _, h := range hashes {
			if h[0] != VersionedHashVersionKZG {
				return nil, fmt.Errorf("%w: %x", ErrInvalidVersionedHash, h[0])
			}
		}
		if blobBaseFee != nil && tx.BlobGasFeeCap().Cmp(blobBaseFee) < 0 {
			return nil, fmt.Errorf("%w: cap %s, price %s", ErrBlobFeeCapTooLow, tx.BlobGasFeeCap(), blobBaseFee)
		}
		perBlobGasPrice = blobBaseFee
	}

	acc := st.GetAccount(sender)
	if code := acc.Code; len(code) > 0 {
		if _, ok := types.DelegationDesignation(code); !ok {
			return nil, fmt.Errorf("%w: %s has code", ErrSenderNotEOA, sender)
		}
	}

	if tx.Nonce() < acc.Nonce {
		return nil, fmt.Errorf("%w: tx %d, state %d", ErrNonceTooLow, tx.Nonce(), acc.Nonce)
	}
	if tx.Nonce() > acc.Nonce {
		return nil, fmt.Errorf("%w: tx %d, state %d", ErrNonceTooHigh, tx.Nonce(), acc.Nonce)
	}

	maxFee := tx.GasFeeCap()
	if !isTyped {
		maxFee = tx.GasPrice()
	}
	cost := new(num.U256).Mul(maxFee, num.FromUint64(tx.Gas()))
	cost.Add(cost, tx.Value())
	if tx.Type() == types.BlobTxType {
		blobCost := new(num.U256).Mul(tx.BlobGasFeeCap(), num.FromUint64(tx.BlobGas()))
		cost.Add(cost, blobCost)
	}
	if acc.Balance.Cmp(cost) < 0 {
		return nil, fmt.Errorf("%w: have %s, want %s", ErrInsufficientBalance, acc.Balance, cost)
	}

	return &CheckedTx{Sender: sender, EffectiveGasPrice: effectiveGasPrice, BlobGasPrice: perBlobGasPrice}, nil
}

// typeGate rejects a transaction type before the fork that introduced it
// activated (§4.7: "typed-tx gating by fork EIP").
func typeGate(txType uint8, rules params.Rules) error {
	switch txType {
	case types.LegacyTxType:
		return nil
	case types.AccessListTxType:
		if !rules.IsBerlin {
			return fmt.Errorf("%w: access-list tx pre-Berlin", ErrTxTypeNotSupported)
		}
	case types.DynamicFeeTxType:
		if !rules.IsLondon {
			return fmt.Errorf("%w: dynamic-fee tx pre-London", ErrTxTypeNotSupported)
		}
	case types.BlobTxType:
		if !rules.IsCancun {
			return fmt.Errorf("%w: blob tx pre-Cancun", ErrTxTypeNotSupported)
		}
	case types.SetCodeTxType:
		if !rules.IsPrague {
			return fmt.Errorf("%w: set-code tx pre-Prague", ErrTxTypeNotSupported)
		}
	default:
		return fmt.Errorf("%w: unknown type %d", ErrTxTypeNotSupported, txType)
	}
	return nil
}

// BlobBaseFee computes the per-blob-gas base fee from excess blob gas
// (EIP-4844): MIN_BLOB_BASE_FEE * e^(excess_blob_gas /
// BLOB_BASE_FEE_UPDATE_FRACTION), approximated with the fake_exponential
// Taylor expansion the EIP itself specifies.
func BlobBaseFee(excessBlobGas uint64, minBlobBaseFee, updateFraction uint64) *num.U256 {
	return fakeExponential(num.FromUint64(minBlobBaseFee), num.FromUint64(excessBlobGas), num.FromUint64(updateFraction))
}

func fakeExponential(factor, numerator, denominator *num.U256) *num.U256 {
	i := num.FromUint64(1)
	output := num.Zero()
	accum := new(num.U256).Mul(factor, denominator)
	for !accum.IsZero() {
		output.Add(output, accum)
		accum.Mul(accum, numerator)
		accum.Div(accum, new(num.U256).Mul(denominator, i))
		i.Add(i, num.FromUint64(1))
	}
	return output.Div(output, denominator)
}
