package vm

import (
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

// EVMLogger captures EVM execution traces step by step (§4.1, §4.5). A
// nil Tracer in Config is the common case and every call site checks
// for it before dispatching, so tracing costs nothing when unused.
type EVMLogger interface {
	// CaptureStart is called at the beginning of a top-level call.
	CaptureStart(from, to types.Address, create bool, input []byte, gas uint64, value *num.U256)
	// CaptureState is called before each opcode executes.
	CaptureState(pc uint64, op OpCode, gas, cost uint64, stack *Stack, memory *Memory, depth int, err error)
	// CaptureEnd is called at the end of a top-level call.
	CaptureEnd(output []byte, gasUsed uint64, err error)
	// CaptureEnter is called when entering a nested CALL/CREATE frame.
	CaptureEnter(kind CallKind, from, to types.Address, input []byte, gas uint64, value *num.U256)
	// CaptureExit is called when a nested frame returns.
	CaptureExit(output []byte, gasUsed uint64, err error)
}

// StructLogEntry is a single step recorded by StructLogTracer.
type StructLogEntry struct {
	Pc      uint64
	Op      OpCode
	Gas     uint64
	GasCost uint64
	Depth   int
	Stack   []*num.U256
	Err     error
}

// StructLogTracer collects step-by-step EVM execution logs the way a
// debug_traceTransaction-style structured logger would, without
// depending on any RPC or serialization layer (those sit outside this
// module's scope).
type StructLogTracer struct {
	Logs    []StructLogEntry
	output  []byte
	err     error
	gasUsed uint64
}

// NewStructLogTracer returns a new StructLogTracer.
func NewStructLogTracer() *StructLogTracer {
	return &StructLogTracer{}
}

func (t *StructLogTracer) CaptureStart(from, to types.Address, create bool, input []byte, gas uint64, value *num.U256) {
}

// CaptureState records one opcode step. The stack is copied so later
// mutations in the interpreter don't alias into the recorded trace.
func (t *StructLogTracer) CaptureState(pc uint64, op OpCode, gas, cost uint64, stack *Stack, memory *Memory, depth int, err error) {
	data := stack.Data()
	stackCopy := make([]*num.U256, len(data))
	for i, v := range data {
		stackCopy[i] = new(num.U256).Set(v)
	}
	t.Logs = append(t.Logs, StructLogEntry{
		Pc:      pc,
		Op:      op,
		Gas:     gas,
		GasCost: cost,
		Depth:   depth,
		Stack:   stackCopy,
		Err:     err,
	})
}

func (t *StructLogTracer) CaptureEnd(output []byte, gasUsed uint64, err error) {
	t.output = output
	t.gasUsed = gasUsed
	t.err = err
}

func (t *StructLogTracer) CaptureEnter(kind CallKind, from, to types.Address, input []byte, gas uint64, value *num.U256) {
}

func (t *StructLogTracer) CaptureExit(output []byte, gasUsed uint64, err error) {}

// Output returns the return data from the traced execution.
func (t *StructLogTracer) Output() []byte { return t.output }

// GasUsed returns the total gas consumed by the traced execution.
func (t *StructLogTracer) GasUsed() uint64 { return t.gasUsed }

// Error returns the error from the traced execution, if any.
func (t *StructLogTracer) Error() error { return t.err }
