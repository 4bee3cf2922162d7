// Package precompiles implements the native contracts at addresses
// 0x01-0x11 (§6): thin gas-and-argument wrappers around cryptographic
// primitives consumed from go-ethereum, golang.org/x/crypto,
// go-ethereum's crypto/bls12381 and crate-crypto/go-eth-kzg. The
// primitives themselves are explicitly out of this core's scope; this
// package is the narrow interface the interpreter calls through.
package precompiles

import (
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/params"
)

// PrecompiledContract is the interface every precompile implements.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

func addr(b byte) types.Address { return types.BytesToAddress([]byte{b}) }

var (
	addrEcrecover = addr(0x01)
	addrSha256    = addr(0x02)
	addrRipemd160 = addr(0x03)
	addrIdentity  = addr(0x04)
	addrModexp    = addr(0x05)
	addrBn256Add  = addr(0x06)
	addrBn256Mul  = addr(0x07)
	addrBn256Pair = addr(0x08)
	addrBlake2F   = addr(0x09)
	addrKZGPoint  = addr(0x0a)
	addrBLSG1Add  = addr(0x0b)
	addrBLSG1MSM  = addr(0x0c)
	addrBLSG2Add  = addr(0x0d)
	addrBLSG2MSM  = addr(0x0e)
	addrBLSPair   = addr(0x0f)
	addrBLSMapFp  = addr(0x10)
	addrBLSMapFp2 = addr(0x11)
)

// Active returns the address-to-contract map active under rules
// (§6/§8: precompile availability is fork-gated exactly like opcodes).
func Active(rules params.Rules) map[types.Address]PrecompiledContract {
	set := map[types.Address]PrecompiledContract{
		addrEcrecover: ecrecoverContract{},
		addrSha256:    sha256Contract{},
		addrRipemd160: ripemd160Contract{},
		addrIdentity:  identityContract{},
	}
	if rules.IsByzantium {
		set[addrModexp] = modexpContract{eip2565: rules.IsBerlin, eip7883: rules.IsOsaka}
		set[addrBn256Add] = bn256AddContract{eip1108: rules.IsIstanbul}
		set[addrBn256Mul] = bn256MulContract{eip1108: rules.IsIstanbul}
		set[addrBn256Pair] = bn256PairContract{eip1108: rules.IsIstanbul}
	}
	if rules.IsIstanbul {
		set[addrBlake2F] = blake2FContract{}
	}
	if rules.IsCancun {
		set[addrKZGPoint] = kzgPointEvalContract{}
	}
	if rules.IsPrague {
		set[addrBLSG1Add] = blsG1AddContract{}
		set[addrBLSG1MSM] = blsG1MSMContract{}
		set[addrBLSG2Add] = blsG2AddContract{}
		set[addrBLSG2MSM] = blsG2MSMContract{}
		set[addrBLSPair] = blsPairingContract{}
		set[addrBLSMapFp] = blsMapFpToG1Contract{}
		set[addrBLSMapFp2] = blsMapFp2ToG2Contract{}
	}
	return set
}

// IsPrecompile reports whether addr names a precompile active under rules.
func IsPrecompile(a types.Address, rules params.Rules) bool {
	_, ok := Active(rules)[a]
	return ok
}

func padRight(b []byte, size int) []byte {
	if len(b) >= size {
		return b[:size]
	}
	out := make([]byte, size)
	copy(out, b)
	return out
}

func sliceOrZero(b []byte, start, end int) []byte {
	out := make([]byte, end-start)
	if start >= len(b) {
		return out
	}
	if end > len(b) {
		end = len(b)
	}
	copy(out, b[start:end])
	return out
}
