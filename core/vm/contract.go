package vm

import (
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

// Contract is the code and execution context of a single call frame
// (§4.1, §4.3): the running code, its caller/callee addresses, the gas
// and value carried into the call, and a cache of valid JUMPDEST offsets.
type Contract struct {
	Caller types.Address
	Address types.Address // the account whose code is executing (storage context)
	CodeAddr types.Address // the account the code came from (differs under DELEGATECALL/CALLCODE)

	Code     []byte
	CodeHash types.Hash
	Input    []byte
	Gas      uint64
	Value    *num.U256

	IsStatic bool

	jumpdests map[uint64]bool
}

// NewContract builds the frame for executing code at codeAddr, with
// storage/self context at addr, invoked by caller.
func NewContract(caller, addr, codeAddr types.Address, value *num.U256, gas uint64, code []byte, isStatic bool) *Contract {
	return &Contract{
		Caller:   caller,
		Address:  addr,
		CodeAddr: codeAddr,
		Value:    value,
		Gas:      gas,
		Code:     code,
		IsStatic: isStatic,
	}
}

// GetOp returns the opcode at position n, or STOP past the end of code
// (§4.3: execution past the end of the bytecode behaves as an implicit STOP).
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// UseGas attempts to deduct gas; reports false (and leaves Gas
// unchanged) if there is not enough.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// validJumpdest reports whether dest is a JUMPDEST opcode that is not
// embedded inside PUSH immediate data (§4.3).
func (c *Contract) validJumpdest(dest *num.U256) bool {
	if !dest.IsUint64() {
		return false
	}
	udest := dest.Uint64()
	if udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

func (c *Contract) isCode(pos uint64) bool {
	if c.jumpdests == nil {
		c.jumpdests = analyzeJumpdests(c.Code)
	}
	return c.jumpdests[pos]
}

// analyzeJumpdests scans code once and returns the set of byte offsets
// that are genuine JUMPDEST opcodes rather than PUSH data.
func analyzeJumpdests(code []byte) map[uint64]bool {
	dests := make(map[uint64]bool)
	for i := uint64(0); i < uint64(len(code)); i++ {
		op := OpCode(code[i])
		if op == JUMPDEST {
			dests[i] = true
		}
		if op.IsPush() {
			i += op.PushSize()
		}
	}
	return dests
}
