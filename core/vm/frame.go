package vm

import (
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

// frame is the mutable execution state of one call-stack level: its
// code, stack, memory, program counter, and the data returned by the
// most recent child call (§4.3, §4.5).
type frame struct {
	evm      *EVM
	contract *Contract
	stack    *Stack
	memory   *Memory
	pc       uint64

	lastReturnData []byte // RETURNDATASIZE/RETURNDATACOPY source

	output   []byte // data to hand back to the caller
	reverted bool   // true if halted via REVERT (caller keeps unused gas)
}

func newFrame(evm *EVM, contract *Contract) *frame {
	return &frame{
		evm:      evm,
		contract: contract,
		stack:    newStack(),
		memory:   newMemory(),
	}
}

// requireMemory resizes memory to at least size bytes, rounded up to a
// whole word (the caller charges the gas before calling this).
func (f *frame) requireMemory(size uint64) {
	f.memory.resize(memoryWordCount(size) * 32)
}

// callerAccount, addressAccount and similar small accessors keep the
// instruction implementations in instructions_*.go terse.
func (f *frame) address() types.Address { return f.contract.Address }
func (f *frame) caller() types.Address  { return f.contract.Caller }
func (f *frame) value() *num.U256       { return f.contract.Value }
