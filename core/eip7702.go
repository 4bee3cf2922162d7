package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
)

// authMagic is the EIP-7702 authorization-tuple signing prefix: the
// signed hash is keccak256(MAGIC || rlp([chain_id, address, nonce])).
const authMagic = 0x05

// delegationCodeLen is the length of an EIP-7702 delegation designator:
// the 3-byte prefix plus a 20-byte address.
const delegationCodeLen = 23

// ApplyAuthorizations processes a set-code transaction's authorization
// list (§4.7): each entry delegates its signer's account code to
// `0xEF0100 ‖ auth.Address`, bumping the signer's nonce. An entry whose
// chain ID, signature, or nonce doesn't check out is skipped rather than
// failing the transaction — EIP-7702 treats authorization failures as
// individually inert, not fatal.
func ApplyAuthorizations(st *state.State, authorizations []types.Authorization, chainID uint64) {
	for i := range authorizations {
		applyOneAuthorization(st, &authorizations[i], chainID)
	}
}

func applyOneAuthorization(st *state.State, auth *types.Authorization, chainID uint64) {
	if auth.ChainID != 0 && auth.ChainID != chainID {
		return
	}
	if auth.V > 1 {
		return
	}
	r := new(big.Int).SetBytes(auth.R[:])
	s := new(big.Int).SetBytes(auth.S[:])
	if !crypto.ValidateSignatureValues(auth.V, r, s, true) {
		return
	}

	authHash := authorizationHash(auth)
	sig := make([]byte, 65)
	rb, sb := auth.R, auth.S
	copy(sig[0:32], rb[:])
	copy(sig[32:64], sb[:])
	sig[64] = auth.V

	pub, err := crypto.SigToPub(authHash, sig)
	if err != nil {
		return
	}
	signer := crypto.PubkeyToAddress(*pub)

	acc := st.GetAccount(signer)
	if len(acc.Code) > 0 {
		if _, isDelegation := types.DelegationDesignation(acc.Code); !isDelegation {
			return
		}
	}
	if auth.Nonce != acc.Nonce {
		return
	}

	if auth.Address == (types.Address{}) {
		// A zero-address authorization clears any existing delegation
		// rather than installing one that points at the zero address.
		st.SetCode(signer, nil)
	} else {
		st.SetCode(signer, delegationCode(auth.Address))
	}
	st.IncrementNonce(signer)
}

// authorizationHash computes keccak256(MAGIC || rlp([chain_id, address, nonce])).
func authorizationHash(auth *types.Authorization) []byte {
	payload, _ := rlp.EncodeToBytes([]interface{}{auth.ChainID, auth.Address, auth.Nonce})
	msg := append([]byte{authMagic}, payload...)
	return crypto.Keccak256(msg)
}

// delegationCode builds the 23-byte EIP-7702 delegation designator
// pointing at target.
func delegationCode(target types.Address) []byte {
	code := make([]byte, delegationCodeLen)
	copy(code, types.DelegationPrefix[:])
	copy(code[3:], target[:])
	return code
}
