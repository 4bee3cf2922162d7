package core

import (
	"fmt"
	"math/big"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm"
	"github.com/evmforge/evmcore/core/vm/num"
	"github.com/evmforge/evmcore/params"
)

// MaxBlobGasPerBlock is the EIP-4844 per-block blob-gas ceiling (Cancun,
// pre-BPO1/BPO2 schedule bumps, which this module's Frontier-Prague
// scope doesn't need to track).
const MaxBlobGasPerBlock uint64 = 6 * types.GasPerBlob

// MinBlobBaseFee and BlobBaseFeeUpdateFraction are the EIP-4844 constants
// feeding fakeExponential's blob base-fee computation.
const (
	MinBlobBaseFee            uint64 = 1
	BlobBaseFeeUpdateFraction uint64 = 3338477
)

// ApplyBody executes a full block body against st (§4.8 apply_body): the
// pre-block system transactions, every included transaction in order,
// withdrawal crediting, and the post-block request-producing system
// transactions, returning the assembled BlockOutput. getHash resolves
// BLOCKHASH lookups within the 256-block window.
func ApplyBody(st *state.State, block *types.Block, chainConfig *params.ChainConfig, getHash func(uint64) types.Hash) (*types.BlockOutput, error) {
	header := block.Header
	rules := chainConfig.Rules(new(big.Int).SetUint64(header.Number), header.Time)

	// Step 1: pre-block system transactions.
	if rules.IsCancun {
		ProcessBeaconBlockRoot(st, header.ParentBeaconRoot, header.Time)
	}
	if rules.IsPrague && header.Number > 0 {
		ProcessParentBlockHash(st, header.Number-1, header.ParentHash)
	}

	blockCtx := vm.BlockContext{
		Coinbase:    header.Coinbase,
		GasLimit:    header.GasLimit,
		BlockNumber: num.FromUint64(header.Number),
		Time:        header.Time,
		Difficulty:  header.Difficulty,
		BaseFee:     header.BaseFee,
		GetHash:     getHash,
	}
	var blobBaseFee *num.U256
	if rules.IsCancun && header.ExcessBlobGas != nil {
		blobBaseFee = BlobBaseFee(*header.ExcessBlobGas, MinBlobBaseFee, BlobBaseFeeUpdateFraction)
		blockCtx.BlobBaseFee = blobBaseFee
	}

	// Step 2: execute every transaction in order.
	gasPool := new(GasPool).AddGas(header.GasLimit)
	blobGasPool := new(GasPool).AddGas(MaxBlobGasPerBlock)

	var (
		receipts      []*types.Receipt
		blockGasUsed  uint64
		blockBlobUsed uint64
	)
	for i, tx := range block.Body.Transactions {
		checked, err := CheckTransaction(st, tx, rules.ChainID.Uint64(), rules, header.BaseFee, blobBaseFee, gasPool, blobGasPool)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		if err := gasPool.SubGas(tx.Gas()); err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		if blobGas := tx.BlobGas(); blobGas > 0 {
			if err := blobGasPool.SubGas(blobGas); err != nil {
				return nil, fmt.Errorf("tx %d: %w", i, err)
			}
		}

		receipt, err := ProcessTransaction(st, tx, checked, blockCtx, chainConfig, rules)
		if err != nil {
			return nil, fmt.Errorf("tx %d: %w", i, err)
		}
		blockGasUsed += receipt.GasUsed
		blockBlobUsed += receipt.BlobGasUsed
		receipt.CumulativeGasUsed = blockGasUsed
		receipts = append(receipts, receipt)
	}

	// Step 3: withdrawals (EIP-4895).
	for _, w := range block.Body.Withdrawals {
		st.SetAccountBalance(w.Address, new(num.U256).Add(st.GetAccount(w.Address).Balance, w.AmountWei()))
	}

	// Step 4: post-block system transactions producing requests.
	var requestsHash types.Hash
	var deposits []types.DepositRequest
	if rules.IsPrague {
		deposits = ParseDepositRequests(receipts)
		withdrawalReqs := ProcessWithdrawalRequests(st)
		consolidationReqs := ProcessConsolidationRequests(st)
		requestsHash = types.ComputeRequestsHash(types.Requests{
			Deposits:       encodeDepositRequests(deposits),
			Withdrawals:    encodeWithdrawalRequests(withdrawalReqs),
			Consolidations: encodeConsolidationRequests(consolidationReqs),
		})
	}

	out := &types.BlockOutput{
		Receipts:        receipts,
		ReceiptsRoot:    ReceiptsRoot(receipts),
		BlockLogsBloom:  types.CreateBloom(receipts),
		BlockGasUsed:    blockGasUsed,
		BlobGasUsed:     blockBlobUsed,
		WithdrawalsRoot: WithdrawalsRoot(block.Body.Withdrawals),
		DepositRequests: deposits,
		RequestsHash:    requestsHash,
	}
	return out, nil
}
