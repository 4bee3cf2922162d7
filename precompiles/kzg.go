package precompiles

import (
	"bytes"
	"crypto/sha256"
	"errors"

	ckzg "github.com/crate-crypto/go-eth-kzg"
)

// kzgPointEvalContract is address 0x0a (EIP-4844): verifies a KZG proof
// that a blob's polynomial evaluates to y at point z, and returns the
// fixed (FIELD_ELEMENTS_PER_BLOB, BLS_MODULUS) pair the protocol uses to
// bound gas/refund accounting for blob-carrying transactions.
type kzgPointEvalContract struct{}

var kzgCtx = ckzg.NewContext4096Secure()

const (
	kzgFieldElementsPerBlob = 4096
	kzgVersionedHashVersion = 0x01
)

// blsModulusBytes is BLS12-381's scalar field modulus, big-endian.
var blsModulusBytes = [32]byte{
	0x73, 0xed, 0xa7, 0x53, 0x29, 0x9d, 0x7d, 0x48, 0x33, 0x39, 0xd8, 0x08, 0x09, 0xa1, 0xd8, 0x05,
	0x53, 0xbd, 0xa4, 0x02, 0xff, 0xfe, 0x5b, 0xfe, 0xff, 0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x01,
}

func kzgReturnValue() []byte {
	var fieldElems [32]byte
	fieldElems[30] = kzgFieldElementsPerBlob >> 8 & 0xff
	fieldElems[31] = kzgFieldElementsPerBlob & 0xff
	out := make([]byte, 64)
	copy(out[0:32], fieldElems[:])
	copy(out[32:64], blsModulusBytes[:])
	return out
}

func (kzgPointEvalContract) RequiredGas(input []byte) uint64 { return 50000 }

func (kzgPointEvalContract) Run(input []byte) ([]byte, error) {
	if len(input) != 192 {
		return nil, errors.New("precompiles: invalid point evaluation input length")
	}
	versionedHash := input[0:32]
	var z, y [32]byte
	copy(z[:], input[32:64])
	copy(y[:], input[64:96])
	var commitment [48]byte
	copy(commitment[:], input[96:144])
	var proof [48]byte
	copy(proof[:], input[144:192])

	if versionedHash[0] != kzgVersionedHashVersion {
		return nil, errors.New("precompiles: unsupported blob versioned hash version")
	}
	if got := kzgVersionedHash(commitment); !bytes.Equal(got[:], versionedHash) {
		return nil, errors.New("precompiles: commitment does not match versioned hash")
	}

	if err := kzgCtx.VerifyKZGProof(ckzg.KZGCommitment(commitment), z, y, ckzg.KZGProof(proof)); err != nil {
		return nil, errors.New("precompiles: invalid KZG proof")
	}
	return kzgReturnValue(), nil
}

// kzgVersionedHash is kzg_to_versioned_hash: sha256(commitment) with the
// first byte overwritten by the blob versioned-hash version (EIP-4844).
func kzgVersionedHash(commitment [48]byte) [32]byte {
	h := sha256.Sum256(commitment[:])
	h[0] = kzgVersionedHashVersion
	return h
}
