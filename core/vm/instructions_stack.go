package vm

import "github.com/evmforge/evmcore/core/vm/num"

// This file groups memory, storage, control-flow, push/dup/swap and the
// EIP-1153 transient-storage and EIP-5656 MCOPY opcodes (§4.2, §4.3).

func opPop(f *frame) error {
	f.stack.pop()
	return nil
}

func opMload(f *frame) error {
	offset := f.stack.peek()
	offset.SetBytes(f.memory.get(offset.Uint64(), 32))
	return nil
}

func opMstore(f *frame) error {
	offset, val := f.stack.pop(), f.stack.pop()
	f.memory.set32(offset.Uint64(), val)
	return nil
}

func opMstore8(f *frame) error {
	offset, val := f.stack.pop(), f.stack.pop()
	f.memory.set(offset.Uint64(), 1, []byte{byte(val.Uint64())})
	return nil
}

func opSload(f *frame) error {
	key := f.stack.peek()
	val := f.evm.State.GetStorage(f.address(), hashFromStack(key))
	key.Set(val)
	return nil
}

func opSstore(f *frame) error {
	key, val := f.stack.pop(), f.stack.pop()
	f.evm.State.SetStorage(f.address(), hashFromStack(key), val)
	return nil
}

func opJump(f *frame) error {
	dest := f.stack.pop()
	if !f.contract.validJumpdest(dest) {
		return haltErr(ErrInvalidJump)
	}
	f.pc = dest.Uint64()
	return nil
}

func opJumpi(f *frame) error {
	dest, cond := f.stack.pop(), f.stack.pop()
	if cond.IsZero() {
		return nil
	}
	if !f.contract.validJumpdest(dest) {
		return haltErr(ErrInvalidJump)
	}
	f.pc = dest.Uint64()
	return nil
}

func opPc(f *frame) error {
	// f.pc was already advanced past this opcode's byte by the
	// interpreter loop, so the PC value reported is pc-1.
	f.stack.push(num.FromUint64(f.pc - 1))
	return nil
}

func opMsize(f *frame) error {
	f.stack.push(num.FromUint64(uint64(f.memory.Len())))
	return nil
}

func opGas(f *frame) error {
	f.stack.push(num.FromUint64(f.contract.Gas))
	return nil
}

func opJumpdest(f *frame) error { return nil }

func opPush0(f *frame) error {
	f.stack.push(num.Zero())
	return nil
}

func makePush(n int) executionFunc {
	return func(f *frame) error {
		start := f.pc
		end := start + uint64(n)
		var buf [32]byte
		if end > uint64(len(f.contract.Code)) {
			end = uint64(len(f.contract.Code))
		}
		copy(buf[32-n:], f.contract.Code[start:end])
		f.stack.push(new(num.U256).SetBytes(buf[32-n:]))
		f.pc += uint64(n)
		return nil
	}
}

func makeDup(n int) executionFunc {
	return func(f *frame) error {
		f.stack.dup(n)
		return nil
	}
}

func makeSwap(n int) executionFunc {
	return func(f *frame) error {
		f.stack.swap(n)
		return nil
	}
}

func opTload(f *frame) error {
	key := f.stack.peek()
	val := f.evm.State.GetTransientStorage(f.address(), hashFromStack(key))
	key.Set(val)
	return nil
}

func opTstore(f *frame) error {
	key, val := f.stack.pop(), f.stack.pop()
	f.evm.State.SetTransientStorage(f.address(), hashFromStack(key), val)
	return nil
}

func opMcopy(f *frame) error {
	destOffset, offset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	n := length.Uint64()
	if n == 0 {
		return nil
	}
	data := f.memory.get(offset.Uint64(), n)
	f.memory.set(destOffset.Uint64(), n, data)
	return nil
}
