package types

import (
	"errors"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/evmforge/evmcore/core/vm/num"
)

var (
	errInvalidSig         = errors.New("types: invalid transaction signature")
	errTxTypeNotSupported = errors.New("types: transaction type not supported for RLP encoding")
	errNoRecovery         = errors.New("types: sender public key recovery failed")
)

// SigningHash returns the hash that the transaction's signature commits
// to: for legacy transactions this is EIP-155-shaped when a chain ID is
// present, plain pre-EIP-155 otherwise; for typed transactions it is
// keccak256(type || rlp(unsigned payload)) per EIP-2718.
func SigningHash(tx *Transaction, chainID uint64) (Hash, error) {
	body, err := encodePayload(tx, true, chainID)
	if err != nil {
		return Hash{}, err
	}
	var enc []byte
	if tx.Type() == LegacyTxType {
		enc = body
	} else {
		enc = append([]byte{tx.Type()}, body...)
	}
	return Hash(crypto.Keccak256Hash(enc)), nil
}

// Finalize computes and caches the transaction's hash. It does not touch
// the signature fields or recover the sender.
func Finalize(tx *Transaction) error {
	h, err := computeHash(tx)
	if err != nil {
		return err
	}
	tx.SetHash(h)
	return nil
}

// Sender recovers the sending address from the transaction's signature
// against the given chain ID, using secp256k1 public-key recovery (§6,
// consumed through go-ethereum/crypto as an external primitive).
func Sender(tx *Transaction, chainID uint64) (Address, error) {
	v, r, s, err := rawSignature(tx)
	if err != nil {
		return Address{}, err
	}
	if tx.Type() == LegacyTxType && tx.ChainID() == nil {
		// Pre-EIP-155 signature (V of 27/28): the hash carries no chain ID.
		chainID = 0
	}
	sigHash, err := SigningHash(tx, chainID)
	if err != nil {
		return Address{}, err
	}
	recovery, err := normalizeRecoveryID(tx.Type(), v)
	if err != nil {
		return Address{}, err
	}
	sig := make([]byte, 65)
	rb, sb := r.Bytes32(), s.Bytes32()
	copy(sig[0:32], rb[:])
	copy(sig[32:64], sb[:])
	sig[64] = recovery

	pub, err := crypto.SigToPub(sigHash[:], sig)
	if err != nil {
		return Address{}, errNoRecovery
	}
	return crypto.PubkeyToAddress(*pub), nil
}

func rawSignature(tx *Transaction) (v, r, s *num.U256, err error) {
	switch t := tx.inner.(type) {
	case *LegacyTx:
		v, r, s = t.V, t.R, t.S
	case *AccessListTx:
		v, r, s = t.V, t.R, t.S
	case *DynamicFeeTx:
		v, r, s = t.V, t.R, t.S
	case *BlobTx:
		v, r, s = t.V, t.R, t.S
	case *SetCodeTx:
		v, r, s = t.V, t.R, t.S
	default:
		return nil, nil, nil, errTxTypeNotSupported
	}
	if v == nil || r == nil || s == nil {
		return nil, nil, nil, errInvalidSig
	}
	return v, r, s, nil
}

// normalizeRecoveryID converts a transaction's V field to the 0/1
// recovery id crypto.SigToPub expects. Legacy pre-EIP-155 uses 27/28;
// EIP-155 legacy encodes the chain ID into V; typed transactions use a
// bare 0/1 "y parity" value directly.
func normalizeRecoveryID(txType uint8, v *num.U256) (byte, error) {
	if txType != LegacyTxType {
		if !v.IsUint64() || v.Uint64() > 1 {
			return 0, errInvalidSig
		}
		return byte(v.Uint64()), nil
	}
	if !v.IsUint64() {
		return 0, errInvalidSig
	}
	vv := v.Uint64()
	switch {
	case vv == 27 || vv == 28:
		return byte(vv - 27), nil
	case vv >= 35:
		return byte((vv - 35) % 2), nil
	default:
		return 0, errInvalidSig
	}
}
