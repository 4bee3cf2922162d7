package precompiles

import (
	"encoding/binary"
	"errors"

	"golang.org/x/crypto/blake2b"
)

// blake2FContract is address 0x09 (EIP-152): the raw BLAKE2b compression
// function F, exposed so off-chain BLAKE2b-based systems (e.g. Zcash
// bridges) can be verified on-chain.
type blake2FContract struct{}

const blake2FInputLength = 213

func (blake2FContract) RequiredGas(input []byte) uint64 {
	if len(input) != blake2FInputLength {
		return 0
	}
	return uint64(binary.BigEndian.Uint32(input[0:4]))
}

func (blake2FContract) Run(input []byte) ([]byte, error) {
	if len(input) != blake2FInputLength {
		return nil, errors.New("precompiles: invalid blake2f input length")
	}
	rounds := binary.BigEndian.Uint32(input[0:4])
	final := input[212]
	if final != 0 && final != 1 {
		return nil, errors.New("precompiles: invalid blake2f final flag")
	}

	var h [8]uint64
	for i := 0; i < 8; i++ {
		h[i] = binary.LittleEndian.Uint64(input[4+i*8:])
	}
	var m [16]uint64
	for i := 0; i < 16; i++ {
		m[i] = binary.LittleEndian.Uint64(input[68+i*8:])
	}
	var t [2]uint64
	t[0] = binary.LittleEndian.Uint64(input[196:])
	t[1] = binary.LittleEndian.Uint64(input[204:])

	blake2b.F(&h, m, t, final == 1, uint64(rounds))

	out := make([]byte, 64)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], h[i])
	}
	return out, nil
}
