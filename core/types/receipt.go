package types

import "github.com/evmforge/evmcore/core/vm/num"

// Receipt status values (post-Byzantium; pre-Byzantium used PostState).
const (
	ReceiptStatusFailed     = uint64(0)
	ReceiptStatusSuccessful = uint64(1)
)

// Receipt is the result of executing one transaction (§3).
type Receipt struct {
	Type              uint8
	PostState         []byte // pre-Byzantium only; nil post-Byzantium
	Status            uint64
	CumulativeGasUsed uint64
	Bloom             Bloom
	Logs              []*Log

	TxHash            Hash
	ContractAddress   Address
	GasUsed           uint64
	EffectiveGasPrice *num.U256

	BlobGasUsed  uint64
	BlobGasPrice *num.U256

	BlockHash        Hash
	BlockNumber      uint64
	TransactionIndex uint
}

// Succeeded reports whether the receipt records a successful transaction.
// Pre-Byzantium receipts have no Status field and are judged by an empty
// PostState slice being absent instead; callers on forks before Byzantium
// should consult PostState directly.
func (r *Receipt) Succeeded() bool {
	return r.Status == ReceiptStatusSuccessful
}

// NewReceipt builds a receipt with its consensus fields set; derived
// fields (tx/block context, log indices) are filled by DeriveFields.
func NewReceipt(status uint64, cumulativeGasUsed uint64, logs []*Log) *Receipt {
	return &Receipt{
		Status:            status,
		CumulativeGasUsed: cumulativeGasUsed,
		Logs:              logs,
		Bloom:             LogsBloom(logs),
	}
}

// DeriveFields stamps block/tx context onto a block's receipts and
// assigns block-wide sequential log indices, mirroring what a real node
// does once a block's hash and position are known.
func DeriveFields(receipts []*Receipt, blockHash Hash, blockNumber uint64, txHashes []Hash) {
	var logIndex uint
	for i, r := range receipts {
		r.BlockHash = blockHash
		r.BlockNumber = blockNumber
		r.TransactionIndex = uint(i)
		if i < len(txHashes) {
			r.TxHash = txHashes[i]
		}
		for _, lg := range r.Logs {
			lg.BlockHash = blockHash
			lg.BlockNumber = blockNumber
			lg.TxIndex = uint(i)
			lg.Index = logIndex
			if i < len(txHashes) {
				lg.TxHash = txHashes[i]
			}
			logIndex++
		}
	}
}

// Withdrawal is an EIP-4895 beacon-chain validator withdrawal.
type Withdrawal struct {
	Index          uint64
	ValidatorIndex uint64
	Address        Address
	AmountGwei     uint64 // in gwei, per the consensus-layer wire format
}

// AmountWei returns the withdrawal amount converted to wei (gwei * 10^9).
func (w *Withdrawal) AmountWei() *num.U256 {
	return new(num.U256).Mul(num.FromUint64(w.AmountGwei), num.FromUint64(1_000_000_000))
}
