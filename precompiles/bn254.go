package precompiles

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto/bn256"
)

var errBN254InvalidPoint = errors.New("precompiles: invalid bn254 curve point")

func newCurvePoint(blob []byte) (*bn256.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, errBN254InvalidPoint
	}
	return p, nil
}

func newTwistPoint(blob []byte) (*bn256.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(blob); err != nil {
		return nil, errBN254InvalidPoint
	}
	return p, nil
}

// bn256AddContract is address 0x06 (EIP-196), repriced by EIP-1108.
type bn256AddContract struct{ eip1108 bool }

func (c bn256AddContract) RequiredGas(input []byte) uint64 {
	if c.eip1108 {
		return 150
	}
	return 500
}

func (c bn256AddContract) Run(input []byte) ([]byte, error) {
	input = padRight(input, 128)
	x, err := newCurvePoint(input[0:64])
	if err != nil {
		return nil, err
	}
	y, err := newCurvePoint(input[64:128])
	if err != nil {
		return nil, err
	}
	sum := new(bn256.G1).Add(x, y)
	return sum.Marshal(), nil
}

// bn256MulContract is address 0x07 (EIP-196), repriced by EIP-1108.
type bn256MulContract struct{ eip1108 bool }

func (c bn256MulContract) RequiredGas(input []byte) uint64 {
	if c.eip1108 {
		return 6000
	}
	return 40000
}

func (c bn256MulContract) Run(input []byte) ([]byte, error) {
	input = padRight(input, 96)
	p, err := newCurvePoint(input[0:64])
	if err != nil {
		return nil, err
	}
	scalar := new(big.Int).SetBytes(input[64:96])
	product := new(bn256.G1).ScalarMult(p, scalar)
	return product.Marshal(), nil
}

const bn256PairElementSize = 192

// bn256PairContract is address 0x08 (EIP-197), repriced by EIP-1108.
type bn256PairContract struct{ eip1108 bool }

func (c bn256PairContract) RequiredGas(input []byte) uint64 {
	pairs := uint64(len(input) / bn256PairElementSize)
	if c.eip1108 {
		return 45000 + pairs*34000
	}
	return 100000 + pairs*80000
}

func (c bn256PairContract) Run(input []byte) ([]byte, error) {
	if len(input)%bn256PairElementSize != 0 {
		return nil, errors.New("precompiles: invalid bn254 pairing input length")
	}
	var g1s []*bn256.G1
	var g2s []*bn256.G2
	for i := 0; i < len(input); i += bn256PairElementSize {
		chunk := input[i : i+bn256PairElementSize]
		p1, err := newCurvePoint(chunk[0:64])
		if err != nil {
			return nil, err
		}
		p2, err := newTwistPoint(chunk[64:192])
		if err != nil {
			return nil, err
		}
		g1s = append(g1s, p1)
		g2s = append(g2s, p2)
	}
	out := make([]byte, 32)
	if bn256.PairingCheck(g1s, g2s) {
		out[31] = 1
	}
	return out, nil
}
