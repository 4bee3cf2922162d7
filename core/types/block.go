package types

import "github.com/evmforge/evmcore/core/vm/num"

// Header carries the consensus fields of a block (§6 block wire format).
// Fields introduced by a later fork are nil/absent on earlier blocks;
// RLP encoding must omit them entirely rather than zero-encode them.
type Header struct {
	ParentHash  Hash
	UncleHash   Hash
	Coinbase    Address
	Root        Hash // state root
	TxHash      Hash // transactions root
	ReceiptHash Hash // receipts root
	Bloom       Bloom
	Difficulty  *num.U256
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   Hash // PREVRANDAO post-Merge
	Nonce       [8]byte

	BaseFee *num.U256 // London+; nil before

	WithdrawalsHash *Hash // Shanghai+; nil before

	BlobGasUsed      *uint64 // Cancun+; nil before
	ExcessBlobGas    *uint64 // Cancun+; nil before
	ParentBeaconRoot *Hash   // Cancun+; nil before

	RequestsHash *Hash // Prague+; nil before
}

// Body is a block's non-header payload.
type Body struct {
	Transactions []*Transaction
	Withdrawals  []*Withdrawal // nil pre-Shanghai, empty-but-non-nil from Shanghai on
}

// Block pairs a header with its body.
type Block struct {
	Header *Header
	Body   *Body
}

// BlockOutput is what apply_body returns (§3, §4.8 step 5): the trie
// roots, cumulative gas/blob-gas, aggregate logs bloom, receipts, and
// the EIP-6110/7002/7251 execution-layer requests collected post-block.
type BlockOutput struct {
	ReceiptsRoot    Hash
	Receipts        []*Receipt
	BlockLogsBloom  Bloom
	BlockGasUsed    uint64
	BlobGasUsed     uint64
	WithdrawalsRoot Hash
	RequestsRoot    Hash
	DepositRequests []DepositRequest
	RequestsHash    Hash
}
