package types

import (
	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"
)

// rlpBig-compatible payload shapes used purely for the RLP codec boundary
// (§6, "RLP encode/decode of structured records" is explicitly external).
// num.U256 does not implement rlp.Encoder, so these mirror shapes use
// plain uint64/[]byte where the protocol allows, and byte slices for
// anything that can legitimately exceed 64 bits (balances, prices).

type rlpLegacyTx struct {
	Nonce    uint64
	GasPrice []byte
	Gas      uint64
	To       *Address `rlp:"nil"`
	Value    []byte
	Data     []byte
	V, R, S  []byte
}

type rlpAccessListTx struct {
	ChainID    []byte
	Nonce      uint64
	GasPrice   []byte
	Gas        uint64
	To         *Address `rlp:"nil"`
	Value      []byte
	Data       []byte
	AccessList AccessList
	V, R, S    []byte
}

type rlpDynamicFeeTx struct {
	ChainID    []byte
	Nonce      uint64
	GasTipCap  []byte
	GasFeeCap  []byte
	Gas        uint64
	To         *Address `rlp:"nil"`
	Value      []byte
	Data       []byte
	AccessList AccessList
	V, R, S    []byte
}

type rlpBlobTx struct {
	ChainID    []byte
	Nonce      uint64
	GasTipCap  []byte
	GasFeeCap  []byte
	Gas        uint64
	To         Address
	Value      []byte
	Data       []byte
	AccessList AccessList
	BlobFeeCap []byte
	BlobHashes []Hash
	V, R, S    []byte
}

type rlpSetCodeTx struct {
	ChainID    []byte
	Nonce      uint64
	GasTipCap  []byte
	GasFeeCap  []byte
	Gas        uint64
	To         Address
	Value      []byte
	Data       []byte
	AccessList AccessList
	AuthList   []rlpAuthorization
	V, R, S    []byte
}

type rlpAuthorization struct {
	ChainID uint64
	Address Address
	Nonce   uint64
	V       uint64
	R, S    []byte
}

// encodePayload returns the RLP payload bytes for the transaction's inner
// type fields, WITHOUT the leading type byte for typed transactions. When
// forSigning is true, signature fields are omitted (Legacy EIP-155 appends
// chainId,0,0 instead; typed transactions simply drop V,R,S).
func encodePayload(tx *Transaction, forSigning bool, chainID uint64) ([]byte, error) {
	u256b := func(x interface{ Bytes32() [32]byte }) []byte {
		if x == nil {
			return nil
		}
		b := x.Bytes32()
		return trimLeadingZeros(b[:])
	}
	switch t := tx.inner.(type) {
	case *LegacyTx:
		payload := rlpLegacyTx{
			Nonce:    t.Nonce,
			GasPrice: u256b(t.GasPrice),
			Gas:      t.Gas,
			To:       t.To,
			Value:    u256b(t.Value),
			Data:     t.Data,
		}
		if forSigning {
			if chainID != 0 {
				return rlp.EncodeToBytes([]interface{}{
					payload.Nonce, payload.GasPrice, payload.Gas, addrOrNil(payload.To), payload.Value, payload.Data,
					chainID, uint64(0), uint64(0),
				})
			}
			return rlp.EncodeToBytes([]interface{}{
				payload.Nonce, payload.GasPrice, payload.Gas, addrOrNil(payload.To), payload.Value, payload.Data,
			})
		}
		payload.V, payload.R, payload.S = u256b(t.V), u256b(t.R), u256b(t.S)
		return rlp.EncodeToBytes(payload)

	case *AccessListTx:
		payload := rlpAccessListTx{
			ChainID: u256b(t.ChainID), Nonce: t.Nonce, GasPrice: u256b(t.GasPrice), Gas: t.Gas,
			To: t.To, Value: u256b(t.Value), Data: t.Data, AccessList: t.AccessList,
		}
		if !forSigning {
			payload.V, payload.R, payload.S = u256b(t.V), u256b(t.R), u256b(t.S)
		}
		return rlp.EncodeToBytes(payload)

	case *DynamicFeeTx:
		payload := rlpDynamicFeeTx{
			ChainID: u256b(t.ChainID), Nonce: t.Nonce, GasTipCap: u256b(t.GasTipCap), GasFeeCap: u256b(t.GasFeeCap),
			Gas: t.Gas, To: t.To, Value: u256b(t.Value), Data: t.Data, AccessList: t.AccessList,
		}
		if !forSigning {
			payload.V, payload.R, payload.S = u256b(t.V), u256b(t.R), u256b(t.S)
		}
		return rlp.EncodeToBytes(payload)

	case *BlobTx:
		payload := rlpBlobTx{
			ChainID: u256b(t.ChainID), Nonce: t.Nonce, GasTipCap: u256b(t.GasTipCap), GasFeeCap: u256b(t.GasFeeCap),
			Gas: t.Gas, To: t.To, Value: u256b(t.Value), Data: t.Data, AccessList: t.AccessList,
			BlobFeeCap: u256b(t.BlobFeeCap), BlobHashes: t.BlobHashes,
		}
		if !forSigning {
			payload.V, payload.R, payload.S = u256b(t.V), u256b(t.R), u256b(t.S)
		}
		return rlp.EncodeToBytes(payload)

	case *SetCodeTx:
		auths := make([]rlpAuthorization, len(t.AuthList))
		for i, a := range t.AuthList {
			auths[i] = rlpAuthorization{ChainID: a.ChainID, Address: a.Address, Nonce: a.Nonce, V: uint64(a.V), R: a.R.Bytes(), S: a.S.Bytes()}
		}
		payload := rlpSetCodeTx{
			ChainID: u256b(t.ChainID), Nonce: t.Nonce, GasTipCap: u256b(t.GasTipCap), GasFeeCap: u256b(t.GasFeeCap),
			Gas: t.Gas, To: t.To, Value: u256b(t.Value), Data: t.Data, AccessList: t.AccessList, AuthList: auths,
		}
		if !forSigning {
			payload.V, payload.R, payload.S = u256b(t.V), u256b(t.R), u256b(t.S)
		}
		return rlp.EncodeToBytes(payload)
	}
	return nil, errTxTypeNotSupported
}

func addrOrNil(a *Address) interface{} {
	if a == nil {
		return []byte{}
	}
	return *a
}

func trimLeadingZeros(b []byte) []byte {
	i := 0
	for i < len(b) && b[i] == 0 {
		i++
	}
	return b[i:]
}

// EncodeRLP returns the full EIP-2718 transaction envelope: the raw RLP
// list for legacy transactions, or type-byte || RLP(payload) for typed
// transactions.
func EncodeRLP(tx *Transaction) ([]byte, error) {
	body, err := encodePayload(tx, false, 0)
	if err != nil {
		return nil, err
	}
	if tx.Type() == LegacyTxType {
		return body, nil
	}
	return append([]byte{tx.Type()}, body...), nil
}

// computeHash returns keccak256 of the full EIP-2718 envelope.
func computeHash(tx *Transaction) (Hash, error) {
	enc, err := EncodeRLP(tx)
	if err != nil {
		return Hash{}, err
	}
	d := sha3.NewLegacyKeccak256()
	d.Write(enc)
	return BytesToHash(d.Sum(nil)), nil
}
