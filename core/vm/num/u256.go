// Package num provides the fixed-width numeric layer the interpreter and
// gas schedule build on: a U256 word with EVM-exact wrapping arithmetic,
// zero-on-divide-by-zero, and byte-array conversions that tolerate
// short/long inputs the way the Yellow Paper's stack operations do.
package num

import "github.com/holiman/uint256"

// U256 is a 256-bit unsigned integer with modulo-2^256 ("wrapping")
// arithmetic. It is a thin alias over uint256.Int, which already
// implements the EVM's div/mod-by-zero-returns-zero convention and
// wraparound add/sub/mul — see DESIGN.md for why this is grounded on
// the ecosystem library rather than reimplemented.
type U256 = uint256.Int

// Zero returns the zero value.
func Zero() *U256 { return new(U256) }

// One returns the value 1.
func One() *U256 { return new(U256).SetOne() }

// FromUint64 returns v as a U256.
func FromUint64(v uint64) *U256 { return new(U256).SetUint64(v) }

// FromBytes interprets b as a big-endian integer; when b is longer than
// 32 bytes only its low-order 32 bytes are kept.
func FromBytes(b []byte) *U256 {
	return new(U256).SetBytes(b)
}

// FromBEBytes32 interprets b as a big-endian integer, left-padding with
// zero when shorter than 32 bytes. When b is longer than 32 bytes its
// high-order bytes are silently dropped and only the last 32 are used;
// longer input is not rejected.
func FromBEBytes32(b []byte) *U256 {
	var padded [32]byte
	if len(b) > 32 {
		b = b[len(b)-32:]
	}
	copy(padded[32-len(b):], b)
	return new(U256).SetBytes(padded[:])
}

// Sign reinterprets a U256 as a two's-complement signed value and
// returns its sign (-1, 0, 1).
func Sign(x *U256) int {
	if x.IsZero() {
		return 0
	}
	if x.Sign() >= 0 && x.Bit(255) == 0 {
		return 1
	}
	return -1
}

// IsNegative reports whether x's high bit (bit 255) is set, i.e. whether
// it is negative under two's-complement interpretation.
func IsNegative(x *U256) bool {
	return x.Bit(255) == 1
}

// Neg256 returns the two's-complement negation of x (mod 2^256).
func Neg256(x *U256) *U256 {
	if x.IsZero() {
		return new(U256)
	}
	out := new(U256).Not(x)
	return out.AddUint64(out, 1)
}

// BitLen returns the number of bits required to represent x, with
// BitLen(0) == 0 per spec §4.1.
func BitLen(x *U256) int {
	return x.BitLen()
}

// WrappingPow computes base^exp mod 2^256 via square-and-multiply. It is
// distinct from ModExp (precompile 0x05): this is the EXP opcode's plain
// 256-bit wraparound exponentiation.
func WrappingPow(base, exp *U256) *U256 {
	return new(U256).Exp(base, exp)
}

// ByteAt returns the i-th byte of x counting from the most significant
// byte (BYTE opcode semantics): ByteAt(x, 0) is the MSB. Returns 0 when
// i >= 32.
func ByteAt(x *U256, i uint64) byte {
	if i >= 32 {
		return 0
	}
	b := x.Bytes32()
	return b[i]
}
