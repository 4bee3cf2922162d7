package types

import "crypto/sha256"

// EIP-7685 execution-layer request type bytes, increasing order.
const (
	DepositRequestType       byte = 0x00
	WithdrawalRequestType    byte = 0x01
	ConsolidationRequestType byte = 0x02
)

// DepositRequest mirrors a validator deposit parsed from the EIP-6110
// deposit contract's log events at the end of a block.
type DepositRequest struct {
	Pubkey                [48]byte
	WithdrawalCredentials [32]byte
	Amount                uint64 // gwei
	Signature             [96]byte
	Index                 uint64
}

// WithdrawalRequest is an EIP-7002 execution-layer-triggered validator
// exit or partial withdrawal.
type WithdrawalRequest struct {
	SourceAddress   Address
	ValidatorPubkey [48]byte
	Amount          uint64 // gwei
}

// ConsolidationRequest is an EIP-7251 validator consolidation.
type ConsolidationRequest struct {
	SourceAddress Address
	SourcePubkey  [48]byte
	TargetPubkey  [48]byte
}

// Requests is the set of raw, SSZ/type-tagged execution-layer requests
// collected for one block, keyed by their EIP-7685 type byte. Encoding
// the DepositRequest/WithdrawalRequest/ConsolidationRequest payloads
// into their exact SSZ wire shape is a consensus-layer concern outside
// this module's scope (§1 Non-goals); RequestsHash is computed here over
// whatever byte payload the caller supplies for each type, which is
// sufficient to exercise the hashing rule itself.
type Requests struct {
	Deposits       []byte // empty if no deposit requests this block
	Withdrawals    []byte
	Consolidations []byte
}

// ComputeRequestsHash implements EIP-7685: for each non-empty request
// type in increasing type-byte order, hash `type_byte ‖ payload`, then
// hash the concatenation of those per-type hashes.
func ComputeRequestsHash(r Requests) Hash {
	var perType [][]byte
	if len(r.Deposits) > 0 {
		perType = append(perType, append([]byte{DepositRequestType}, r.Deposits...))
	}
	if len(r.Withdrawals) > 0 {
		perType = append(perType, append([]byte{WithdrawalRequestType}, r.Withdrawals...))
	}
	if len(r.Consolidations) > 0 {
		perType = append(perType, append([]byte{ConsolidationRequestType}, r.Consolidations...))
	}

	d := sha256.New()
	for _, payload := range perType {
		sum := sha256.Sum256(payload)
		d.Write(sum[:])
	}
	var out Hash
	copy(out[:], d.Sum(nil))
	return out
}
