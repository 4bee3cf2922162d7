package types

import (
	"sync/atomic"

	"github.com/evmforge/evmcore/core/vm/num"
)

// Transaction type bytes per EIP-2718.
const (
	LegacyTxType     = 0x00
	AccessListTxType = 0x01
	DynamicFeeTxType = 0x02
	BlobTxType       = 0x03
	SetCodeTxType    = 0x04
)

// Transaction wraps one of the five TxData payloads with a cached hash
// and sender, mirroring the teacher's immutable-wrapper-plus-cache shape.
type Transaction struct {
	inner TxData
	hash  atomic.Pointer[Hash]
	from  atomic.Pointer[Address]
}

// NewTx wraps a TxData payload in a Transaction.
func NewTx(inner TxData) *Transaction { return &Transaction{inner: inner} }

// Type returns the EIP-2718 type byte.
func (tx *Transaction) Type() uint8 { return tx.inner.txType() }

// ChainID returns the transaction's chain ID, or nil for a legacy
// transaction signed without EIP-155 replay protection.
func (tx *Transaction) ChainID() *num.U256 { return tx.inner.chainID() }

func (tx *Transaction) Nonce() uint64           { return tx.inner.nonce() }
func (tx *Transaction) Gas() uint64             { return tx.inner.gas() }
func (tx *Transaction) To() *Address            { return tx.inner.to() }
func (tx *Transaction) Value() *num.U256        { return tx.inner.value() }
func (tx *Transaction) Data() []byte            { return tx.inner.data() }
func (tx *Transaction) AccessList() AccessList  { return tx.inner.accessList() }
func (tx *Transaction) GasPrice() *num.U256     { return tx.inner.gasPrice() }
func (tx *Transaction) GasTipCap() *num.U256    { return tx.inner.gasTipCap() }
func (tx *Transaction) GasFeeCap() *num.U256    { return tx.inner.gasFeeCap() }

// BlobHashes returns the versioned blob hashes of a blob transaction, or
// nil for any other type.
func (tx *Transaction) BlobHashes() []Hash {
	if bt, ok := tx.inner.(*BlobTx); ok {
		return bt.BlobHashes
	}
	return nil
}

// BlobGasFeeCap returns the per-blob-gas fee cap of a blob transaction.
func (tx *Transaction) BlobGasFeeCap() *num.U256 {
	if bt, ok := tx.inner.(*BlobTx); ok {
		return bt.BlobFeeCap
	}
	return nil
}

// BlobGas returns the gas charged against the block's blob-gas budget:
// GasPerBlob * len(BlobHashes), 0 for non-blob transactions.
func (tx *Transaction) BlobGas() uint64 {
	if bt, ok := tx.inner.(*BlobTx); ok {
		return GasPerBlob * uint64(len(bt.BlobHashes))
	}
	return 0
}

// Authorizations returns the EIP-7702 authorization list of a set-code
// transaction, or nil for any other type.
func (tx *Transaction) Authorizations() []Authorization {
	if st, ok := tx.inner.(*SetCodeTx); ok {
		return st.AuthList
	}
	return nil
}

// SetHash caches the transaction hash (computed by the signer).
func (tx *Transaction) SetHash(h Hash) { tx.hash.Store(&h) }

// Hash returns the cached transaction hash, or the zero hash if unset.
func (tx *Transaction) Hash() Hash {
	if h := tx.hash.Load(); h != nil {
		return *h
	}
	return Hash{}
}

// SetSender caches the recovered sender address.
func (tx *Transaction) SetSender(addr Address) { tx.from.Store(&addr) }

// Sender returns the cached sender, or nil if not yet recovered.
func (tx *Transaction) Sender() *Address { return tx.from.Load() }

// Inner exposes the underlying TxData payload for signers/encoders.
func (tx *Transaction) Inner() TxData { return tx.inner }

// TxData is the per-type transaction payload, mirroring go-ethereum's
// design: one small struct per type implementing a shared read-only
// interface so the rest of the pipeline needn't switch on type except
// where consensus rules genuinely differ (blob/set-code gating).
type TxData interface {
	txType() byte
	chainID() *num.U256
	accessList() AccessList
	data() []byte
	gas() uint64
	gasPrice() *num.U256
	gasTipCap() *num.U256
	gasFeeCap() *num.U256
	value() *num.U256
	nonce() uint64
	to() *Address
}

// LegacyTx is the original (type implicit, pre-EIP-2718) transaction
// format: a flat gas price, no access list.
type LegacyTx struct {
	Nonce    uint64
	GasPrice *num.U256
	Gas      uint64
	To       *Address
	Value    *num.U256
	Data     []byte
	V, R, S  *num.U256
}

func (tx *LegacyTx) txType() byte             { return LegacyTxType }
func (tx *LegacyTx) chainID() *num.U256       { return deriveChainID(tx.V) }
func (tx *LegacyTx) accessList() AccessList   { return nil }
func (tx *LegacyTx) data() []byte             { return tx.Data }
func (tx *LegacyTx) gas() uint64              { return tx.Gas }
func (tx *LegacyTx) gasPrice() *num.U256      { return tx.GasPrice }
func (tx *LegacyTx) gasTipCap() *num.U256     { return tx.GasPrice }
func (tx *LegacyTx) gasFeeCap() *num.U256     { return tx.GasPrice }
func (tx *LegacyTx) value() *num.U256         { return tx.Value }
func (tx *LegacyTx) nonce() uint64            { return tx.Nonce }
func (tx *LegacyTx) to() *Address             { return tx.To }

// deriveChainID recovers the EIP-155 chain ID embedded in a legacy
// signature's V value, or nil when V is a plain 27/28 (no replay
// protection / pre-EIP-155).
func deriveChainID(v *num.U256) *num.U256 {
	if v == nil {
		return nil
	}
	if v.Cmp(num.FromUint64(35)) < 0 {
		return nil
	}
	// chainID = (v - 35) / 2
	out := new(num.U256).Sub(v, num.FromUint64(35))
	return out.Div(out, num.FromUint64(2))
}

// AccessListTx is the EIP-2930 (type 0x01) transaction: adds a
// pre-declared access list on top of the legacy shape.
type AccessListTx struct {
	ChainID    *num.U256
	Nonce      uint64
	GasPrice   *num.U256
	Gas        uint64
	To         *Address
	Value      *num.U256
	Data       []byte
	AccessList AccessList
	V, R, S    *num.U256
}

func (tx *AccessListTx) txType() byte           { return AccessListTxType }
func (tx *AccessListTx) chainID() *num.U256     { return tx.ChainID }
func (tx *AccessListTx) accessList() AccessList { return tx.AccessList }
func (tx *AccessListTx) data() []byte           { return tx.Data }
func (tx *AccessListTx) gas() uint64            { return tx.Gas }
func (tx *AccessListTx) gasPrice() *num.U256    { return tx.GasPrice }
func (tx *AccessListTx) gasTipCap() *num.U256   { return tx.GasPrice }
func (tx *AccessListTx) gasFeeCap() *num.U256   { return tx.GasPrice }
func (tx *AccessListTx) value() *num.U256       { return tx.Value }
func (tx *AccessListTx) nonce() uint64          { return tx.Nonce }
func (tx *AccessListTx) to() *Address           { return tx.To }

// DynamicFeeTx is the EIP-1559 (type 0x02) fee-market transaction.
type DynamicFeeTx struct {
	ChainID    *num.U256
	Nonce      uint64
	GasTipCap  *num.U256
	GasFeeCap  *num.U256
	Gas        uint64
	To         *Address
	Value      *num.U256
	Data       []byte
	AccessList AccessList
	V, R, S    *num.U256
}

func (tx *DynamicFeeTx) txType() byte           { return DynamicFeeTxType }
func (tx *DynamicFeeTx) chainID() *num.U256     { return tx.ChainID }
func (tx *DynamicFeeTx) accessList() AccessList { return tx.AccessList }
func (tx *DynamicFeeTx) data() []byte           { return tx.Data }
func (tx *DynamicFeeTx) gas() uint64            { return tx.Gas }
func (tx *DynamicFeeTx) gasPrice() *num.U256    { return tx.GasFeeCap }
func (tx *DynamicFeeTx) gasTipCap() *num.U256   { return tx.GasTipCap }
func (tx *DynamicFeeTx) gasFeeCap() *num.U256   { return tx.GasFeeCap }
func (tx *DynamicFeeTx) value() *num.U256       { return tx.Value }
func (tx *DynamicFeeTx) nonce() uint64          { return tx.Nonce }
func (tx *DynamicFeeTx) to() *Address           { return tx.To }

// GasPerBlob is the fixed gas charge per blob (EIP-4844): 2^17.
const GasPerBlob = 1 << 17

// BlobTx is the EIP-4844 (type 0x03) blob-carrying transaction. Unlike
// every other type it may never be a contract-creation transaction (To
// is mandatory, spec §4.7).
type BlobTx struct {
	ChainID    *num.U256
	Nonce      uint64
	GasTipCap  *num.U256
	GasFeeCap  *num.U256
	Gas        uint64
	To         Address
	Value      *num.U256
	Data       []byte
	AccessList AccessList
	BlobFeeCap *num.U256
	BlobHashes []Hash
	V, R, S    *num.U256
}

func (tx *BlobTx) txType() byte           { return BlobTxType }
func (tx *BlobTx) chainID() *num.U256     { return tx.ChainID }
func (tx *BlobTx) accessList() AccessList { return tx.AccessList }
func (tx *BlobTx) data() []byte           { return tx.Data }
func (tx *BlobTx) gas() uint64            { return tx.Gas }
func (tx *BlobTx) gasPrice() *num.U256    { return tx.GasFeeCap }
func (tx *BlobTx) gasTipCap() *num.U256   { return tx.GasTipCap }
func (tx *BlobTx) gasFeeCap() *num.U256   { return tx.GasFeeCap }
func (tx *BlobTx) value() *num.U256       { return tx.Value }
func (tx *BlobTx) nonce() uint64          { return tx.Nonce }
func (tx *BlobTx) to() *Address           { a := tx.To; return &a }

// SetCodeTx is the EIP-7702 (type 0x04) "set code" transaction: a
// fee-market transaction plus a list of delegation authorizations. Like
// blob transactions it may never target contract creation.
type SetCodeTx struct {
	ChainID    *num.U256
	Nonce      uint64
	GasTipCap  *num.U256
	GasFeeCap  *num.U256
	Gas        uint64
	To         Address
	Value      *num.U256
	Data       []byte
	AccessList AccessList
	AuthList   []Authorization
	V, R, S    *num.U256
}

func (tx *SetCodeTx) txType() byte           { return SetCodeTxType }
func (tx *SetCodeTx) chainID() *num.U256     { return tx.ChainID }
func (tx *SetCodeTx) accessList() AccessList { return tx.AccessList }
func (tx *SetCodeTx) data() []byte           { return tx.Data }
func (tx *SetCodeTx) gas() uint64            { return tx.Gas }
func (tx *SetCodeTx) gasPrice() *num.U256    { return tx.GasFeeCap }
func (tx *SetCodeTx) gasTipCap() *num.U256   { return tx.GasTipCap }
func (tx *SetCodeTx) gasFeeCap() *num.U256   { return tx.GasFeeCap }
func (tx *SetCodeTx) value() *num.U256       { return tx.Value }
func (tx *SetCodeTx) nonce() uint64          { return tx.Nonce }
func (tx *SetCodeTx) to() *Address           { a := tx.To; return &a }
