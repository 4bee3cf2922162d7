package precompiles

import "math/big"

// modexpContract is address 0x05 (EIP-198), repriced by EIP-2565
// (Berlin) and again by EIP-7883 (Osaka, provisional).
type modexpContract struct {
	eip2565 bool
	eip7883 bool
}

func modexpLengths(input []byte) (baseLen, expLen, modLen *big.Int) {
	input = padRight(input, 96)
	baseLen = new(big.Int).SetBytes(input[0:32])
	expLen = new(big.Int).SetBytes(input[32:64])
	modLen = new(big.Int).SetBytes(input[64:96])
	return
}

// modexpMultComplexity is the EIP-2565 "multiplication complexity"
// function: ceil(max(baseLen, modLen) / 8)^2.
func modexpMultComplexity(x uint64) uint64 {
	words := (x + 7) / 8
	return words * words
}

func (c modexpContract) RequiredGas(input []byte) uint64 {
	baseLenBig, expLenBig, modLenBig := modexpLengths(input)
	if !baseLenBig.IsUint64() || !expLenBig.IsUint64() || !modLenBig.IsUint64() {
		return ^uint64(0) // astronomically large: any real gas limit rejects this
	}
	baseLen, expLen, modLen := baseLenBig.Uint64(), expLenBig.Uint64(), modLenBig.Uint64()

	// The exponent's "effective" bit length: the first 32 bytes of the
	// exponent interpreted as an integer if expLen <= 32, else adjusted
	// for the leading word when longer (EIP-198/2565).
	var expHead *big.Int
	start := 96 + baseLen
	if expLen > 0 {
		headLen := expLen
		if headLen > 32 {
			headLen = 32
		}
		expHead = new(big.Int).SetBytes(sliceOrZero(input, int(start), int(start+headLen)))
	} else {
		expHead = new(big.Int)
	}
	adjExpLen := adjustedExpLen(expLen, expHead)

	if !c.eip2565 {
		maxLen := baseLen
		if modLen > maxLen {
			maxLen = modLen
		}
		complexity := oldMultComplexity(maxLen)
		gas := new(big.Int).Mul(big.NewInt(int64(complexity)), bigMax(adjExpLen, big.NewInt(1)))
		gas.Div(gas, big.NewInt(20))
		if !gas.IsUint64() {
			return ^uint64(0)
		}
		return gas.Uint64()
	}

	maxLen := baseLen
	if modLen > maxLen {
		maxLen = modLen
	}
	complexity := modexpMultComplexity(maxLen)
	gas := new(big.Int).Mul(big.NewInt(int64(complexity)), bigMax(adjExpLen, big.NewInt(1)))
	divisor := int64(3)
	if c.eip7883 {
		divisor = 1 // EIP-7883 removes the /3 discount, floors at a higher minimum instead
	}
	gas.Div(gas, big.NewInt(divisor))
	floor := uint64(200)
	if c.eip7883 {
		floor = 500
	}
	if !gas.IsUint64() || gas.Uint64() < floor {
		return floor
	}
	return gas.Uint64()
}

func oldMultComplexity(x uint64) uint64 {
	switch {
	case x <= 64:
		return x * x
	case x <= 1024:
		return x*x/4 + 96*x - 3072
	default:
		return x*x/16 + 480*x - 199680
	}
}

func adjustedExpLen(expLen uint64, expHead *big.Int) *big.Int {
	bitLen := expHead.BitLen()
	if expLen <= 32 {
		if bitLen == 0 {
			return big.NewInt(0)
		}
		return big.NewInt(int64(bitLen - 1))
	}
	extra := (expLen - 32) * 8
	base := 0
	if bitLen > 0 {
		base = bitLen - 1
	}
	return new(big.Int).Add(big.NewInt(int64(extra)), big.NewInt(int64(base)))
}

func bigMax(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

func (c modexpContract) Run(input []byte) ([]byte, error) {
	baseLenBig, expLenBig, modLenBig := modexpLengths(input)
	baseLen, expLen, modLen := baseLenBig.Uint64(), expLenBig.Uint64(), modLenBig.Uint64()

	if baseLen == 0 && modLen == 0 {
		return []byte{}, nil
	}

	base := new(big.Int).SetBytes(sliceOrZero(input, 96, int(96+baseLen)))
	exp := new(big.Int).SetBytes(sliceOrZero(input, int(96+baseLen), int(96+baseLen+expLen)))
	mod := new(big.Int).SetBytes(sliceOrZero(input, int(96+baseLen+expLen), int(96+baseLen+expLen+modLen)))

	out := make([]byte, modLen)
	if mod.Sign() == 0 {
		return out, nil
	}
	result := new(big.Int).Exp(base, exp, mod)
	resultBytes := result.Bytes()
	copy(out[uint64(len(out))-uint64(len(resultBytes)):], resultBytes)
	return out, nil
}
