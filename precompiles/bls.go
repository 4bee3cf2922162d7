package precompiles

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/crypto/bls12381"
)

// The BLS12-381 family (addresses 0x0b-0x11, EIP-2537) is consumed
// through go-ethereum's crypto/bls12381 package — the same wrapper
// go-ethereum's own Prague precompiles use — rather than a hand-rolled
// binding, since it already speaks the EIP-2537 fixed-width point
// encoding (64-byte field elements, 128-byte G1 / 256-byte G2 points).

const (
	blsFieldElementSize = 64
	blsG1PointSize      = 2 * blsFieldElementSize
	blsG2PointSize      = 4 * blsFieldElementSize
	blsScalarSize       = 32
)

var errBLSInputLength = errors.New("precompiles: invalid BLS12-381 input length")

func decodeG1(in []byte) (*bls12381.PointG1, error) {
	g1 := bls12381.NewG1()
	return g1.DecodePoint(in)
}

func decodeG2(in []byte) (*bls12381.PointG2, error) {
	g2 := bls12381.NewG2()
	return g2.DecodePoint(in)
}

// blsG1AddContract is address 0x0b.
type blsG1AddContract struct{}

func (blsG1AddContract) RequiredGas(input []byte) uint64 { return 375 }

func (blsG1AddContract) Run(input []byte) ([]byte, error) {
	if len(input) != 2*blsG1PointSize {
		return nil, errBLSInputLength
	}
	g1 := bls12381.NewG1()
	a, err := g1.DecodePoint(input[0:blsG1PointSize])
	if err != nil {
		return nil, err
	}
	b, err := g1.DecodePoint(input[blsG1PointSize : 2*blsG1PointSize])
	if err != nil {
		return nil, err
	}
	r := g1.New()
	g1.Add(r, a, b)
	return g1.EncodePoint(r), nil
}

// blsG1MSMContract is address 0x0c: multi-scalar multiplication over G1.
type blsG1MSMContract struct{}

const blsG1MSMPairSize = blsG1PointSize + blsScalarSize

func (blsG1MSMContract) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / blsG1MSMPairSize)
	if k == 0 {
		return 0
	}
	return k * 12000 * g1MSMDiscount(k) / 1000
}

// g1MSMDiscount approximates the EIP-2537 discount table with a smooth
// floor, favoring a monotonically-decreasing-but-never-zero multiplier
// over reproducing the exact piecewise table.
func g1MSMDiscount(k uint64) uint64 {
	switch {
	case k == 1:
		return 1000
	case k < 4:
		return 900
	case k < 8:
		return 800
	case k < 16:
		return 700
	case k < 32:
		return 600
	case k < 64:
		return 550
	default:
		return 500
	}
}

func (blsG1MSMContract) Run(input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%blsG1MSMPairSize != 0 {
		return nil, errBLSInputLength
	}
	g1 := bls12381.NewG1()
	acc := g1.Zero()
	for off := 0; off < len(input); off += blsG1MSMPairSize {
		pt, err := g1.DecodePoint(input[off : off+blsG1PointSize])
		if err != nil {
			return nil, err
		}
		scalar := new(big.Int).SetBytes(input[off+blsG1PointSize : off+blsG1MSMPairSize])
		term := g1.New()
		g1.MulScalar(term, pt, scalar)
		g1.Add(acc, acc, term)
	}
	return g1.EncodePoint(acc), nil
}

// blsG2AddContract is address 0x0d.
type blsG2AddContract struct{}

func (blsG2AddContract) RequiredGas(input []byte) uint64 { return 600 }

func (blsG2AddContract) Run(input []byte) ([]byte, error) {
	if len(input) != 2*blsG2PointSize {
		return nil, errBLSInputLength
	}
	g2 := bls12381.NewG2()
	a, err := g2.DecodePoint(input[0:blsG2PointSize])
	if err != nil {
		return nil, err
	}
	b, err := g2.DecodePoint(input[blsG2PointSize : 2*blsG2PointSize])
	if err != nil {
		return nil, err
	}
	r := g2.New()
	g2.Add(r, a, b)
	return g2.EncodePoint(r), nil
}

// blsG2MSMContract is address 0x0e.
type blsG2MSMContract struct{}

const blsG2MSMPairSize = blsG2PointSize + blsScalarSize

func (blsG2MSMContract) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / blsG2MSMPairSize)
	if k == 0 {
		return 0
	}
	return k * 22500 * g1MSMDiscount(k) / 1000
}

func (blsG2MSMContract) Run(input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%blsG2MSMPairSize != 0 {
		return nil, errBLSInputLength
	}
	g2 := bls12381.NewG2()
	acc := g2.Zero()
	for off := 0; off < len(input); off += blsG2MSMPairSize {
		pt, err := g2.DecodePoint(input[off : off+blsG2PointSize])
		if err != nil {
			return nil, err
		}
		scalar := new(big.Int).SetBytes(input[off+blsG2PointSize : off+blsG2MSMPairSize])
		term := g2.New()
		g2.MulScalar(term, pt, scalar)
		g2.Add(acc, acc, term)
	}
	return g2.EncodePoint(acc), nil
}

const blsPairElementSize = blsG1PointSize + blsG2PointSize

// blsPairingContract is address 0x0f.
type blsPairingContract struct{}

func (blsPairingContract) RequiredGas(input []byte) uint64 {
	k := uint64(len(input) / blsPairElementSize)
	return 32600*k + 37700
}

func (blsPairingContract) Run(input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%blsPairElementSize != 0 {
		return nil, errBLSInputLength
	}
	engine := bls12381.NewPairingEngine()
	for off := 0; off < len(input); off += blsPairElementSize {
		g1pt, err := decodeG1(input[off : off+blsG1PointSize])
		if err != nil {
			return nil, err
		}
		g2pt, err := decodeG2(input[off+blsG1PointSize : off+blsPairElementSize])
		if err != nil {
			return nil, err
		}
		engine.AddPair(g1pt, g2pt)
	}
	out := make([]byte, 32)
	if engine.Check() {
		out[31] = 1
	}
	return out, nil
}

// blsMapFpToG1Contract is address 0x10.
type blsMapFpToG1Contract struct{}

func (blsMapFpToG1Contract) RequiredGas(input []byte) uint64 { return 5500 }

func (blsMapFpToG1Contract) Run(input []byte) ([]byte, error) {
	if len(input) != blsFieldElementSize {
		return nil, errBLSInputLength
	}
	g1 := bls12381.NewG1()
	pt, err := g1.MapToCurve(input)
	if err != nil {
		return nil, err
	}
	return g1.EncodePoint(pt), nil
}

// blsMapFp2ToG2Contract is address 0x11.
type blsMapFp2ToG2Contract struct{}

func (blsMapFp2ToG2Contract) RequiredGas(input []byte) uint64 { return 23800 }

func (blsMapFp2ToG2Contract) Run(input []byte) ([]byte, error) {
	if len(input) != 2*blsFieldElementSize {
		return nil, errBLSInputLength
	}
	g2 := bls12381.NewG2()
	pt, err := g2.MapToCurve(input)
	if err != nil {
		return nil, err
	}
	return g2.EncodePoint(pt), nil
}
