package vm

import "github.com/evmforge/evmcore/core/vm/num"

// Memory is the EVM's byte-addressable, word-expanding scratch space
// (§4.3). It only ever grows within a single call frame and is
// discarded (not journaled) when the frame returns.
type Memory struct {
	store []byte
}

func newMemory() *Memory { return &Memory{} }

// resize grows memory to size bytes if it is currently shorter. Callers
// must have already charged the memory-expansion gas for this size.
func (m *Memory) resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// set copies value into memory at offset; offset+len(value) must already
// be within the resized bounds.
func (m *Memory) set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// set32 writes a 256-bit word at offset, big-endian.
func (m *Memory) set32(offset uint64, val *num.U256) {
	b := val.Bytes32()
	copy(m.store[offset:offset+32], b[:])
}

// get returns a freshly-copied slice of memory at [offset, offset+size).
func (m *Memory) get(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// getPtr returns a direct reference into the backing array; callers must
// not retain it past the current opcode.
func (m *Memory) getPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Len returns the current memory size in bytes (always a multiple of 32).
func (m *Memory) Len() int { return len(m.store) }

// Data returns the full backing slice.
func (m *Memory) Data() []byte { return m.store }

// memoryWordCount rounds size up to the nearest whole 32-byte word count.
func memoryWordCount(size uint64) uint64 { return (size + 31) / 32 }

// memoryGasCost is the quadratic-plus-linear memory expansion cost used
// throughout the gas schedule (§5): 3*words + words^2/512.
func memoryGasCost(words uint64) uint64 {
	return GasMemory*words + (words*words)/512
}
