package vm

import "github.com/evmforge/evmcore/core/vm/num"

// This file groups the arithmetic, comparison and bitwise opcodes (§4.3):
// plain 256-bit wraparound math, EVM's zero-on-divide-by-zero convention,
// and the Constantinople shift family.

func opStop(f *frame) error { return nil }

func opAdd(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.Add(a, b)
	return nil
}

func opMul(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.Mul(a, b)
	return nil
}

func opSub(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.Sub(a, b)
	return nil
}

func opDiv(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.Div(a, b)
	return nil
}

func opSdiv(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.SDiv(a, b)
	return nil
}

func opMod(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.Mod(a, b)
	return nil
}

func opSmod(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.SMod(a, b)
	return nil
}

func opAddmod(f *frame) error {
	a, b, n := f.stack.pop(), f.stack.pop(), f.stack.peek()
	n.AddMod(a, b, n)
	return nil
}

func opMulmod(f *frame) error {
	a, b, n := f.stack.pop(), f.stack.pop(), f.stack.peek()
	n.MulMod(a, b, n)
	return nil
}

func opExp(f *frame) error {
	base, exp := f.stack.pop(), f.stack.peek()
	exp.Exp(base, exp)
	return nil
}

func opSignExtend(f *frame) error {
	back, val := f.stack.pop(), f.stack.peek()
	val.ExtendSign(val, back)
	return nil
}

func opLt(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	if a.Lt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil
}

func opGt(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	if a.Gt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil
}

func opSlt(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	if a.Slt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil
}

func opSgt(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	if a.Sgt(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil
}

func opEq(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	if a.Eq(b) {
		b.SetOne()
	} else {
		b.Clear()
	}
	return nil
}

func opIszero(f *frame) error {
	a := f.stack.peek()
	if a.IsZero() {
		a.SetOne()
	} else {
		a.Clear()
	}
	return nil
}

func opAnd(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.And(a, b)
	return nil
}

func opOr(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.Or(a, b)
	return nil
}

func opXor(f *frame) error {
	a, b := f.stack.pop(), f.stack.peek()
	b.Xor(a, b)
	return nil
}

func opNot(f *frame) error {
	a := f.stack.peek()
	a.Not(a)
	return nil
}

func opByte(f *frame) error {
	idx, val := f.stack.pop(), f.stack.peek()
	var result byte
	if idx.IsUint64() {
		result = num.ByteAt(val, idx.Uint64())
	}
	val.SetUint64(uint64(result))
	return nil
}

func opShl(f *frame) error {
	shift, value := f.stack.pop(), f.stack.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opShr(f *frame) error {
	shift, value := f.stack.pop(), f.stack.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil
}

func opSar(f *frame) error {
	shift, value := f.stack.pop(), f.stack.peek()
	if shift.GtUint64(256) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil
}

// opClz implements CLZ (EIP-7939, Osaka): the count of leading zero bits
// in the 256-bit operand, 256 for a zero operand.
func opClz(f *frame) error {
	val := f.stack.peek()
	val.SetUint64(uint64(256 - num.BitLen(val)))
	return nil
}
