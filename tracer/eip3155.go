// Package tracer assembles EIP-3155 structured-trace JSON lines from the
// step-by-step callbacks core/vm's EVMLogger interface delivers (§6).
package tracer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm"
	"github.com/evmforge/evmcore/core/vm/num"
)

// Config controls how much of each EIP-3155 line EIP3155Tracer fills in.
// pc/op/gas/gasCost/memSize/depth/opName are always present; stack,
// memory and returnData are each individually optional since capturing
// them has real overhead on deep traces.
type Config struct {
	Stack      bool
	Memory     bool
	ReturnData bool
}

// Line is one EIP-3155 structured-trace record.
type Line struct {
	Pc         uint64   `json:"pc"`
	Op         byte     `json:"op"`
	OpName     string   `json:"opName"`
	Gas        string   `json:"gas"`
	GasCost    string   `json:"gasCost"`
	Memory     string   `json:"memory,omitempty"`
	MemSize    int      `json:"memSize"`
	Stack      []string `json:"stack,omitempty"`
	ReturnData string   `json:"returnData,omitempty"`
	Depth      int      `json:"depth"`
	Refund     uint64   `json:"refund"`
	Error      string   `json:"error,omitempty"`
}

// EIP3155Tracer implements core/vm.EVMLogger and renders each opcode step
// as one Line, both collected in memory and, when w is non-nil, streamed
// as newline-delimited JSON.
type EIP3155Tracer struct {
	cfg    Config
	w      io.Writer
	lines  []Line
	refund func() uint64

	output  []byte
	err     error
	gasUsed uint64
}

// New returns a tracer that only accumulates lines in memory.
func New(cfg Config) *EIP3155Tracer {
	return &EIP3155Tracer{cfg: cfg}
}

// NewStreaming returns a tracer that also writes each line to w as it is
// produced, e.g. stdout for a `--trace` style CLI flag.
func NewStreaming(cfg Config, w io.Writer) *EIP3155Tracer {
	return &EIP3155Tracer{cfg: cfg, w: w}
}

// SetRefundFunc registers a callback the tracer polls for the journal's
// current gas-refund counter on every step. The EVMLogger interface
// itself carries no state handle, so this is how a caller wires the
// running state.State.Refund() into each emitted line; if unset, every
// line reports a refund of 0.
func (t *EIP3155Tracer) SetRefundFunc(f func() uint64) {
	t.refund = f
}

func (t *EIP3155Tracer) CaptureStart(from, to types.Address, create bool, input []byte, gas uint64, value *num.U256) {
	t.lines = t.lines[:0]
	t.output = nil
	t.err = nil
	t.gasUsed = 0
}

// CaptureState renders one opcode step into a Line.
func (t *EIP3155Tracer) CaptureState(pc uint64, op vm.OpCode, gas, cost uint64, stack *vm.Stack, memory *vm.Memory, depth int, err error) {
	line := Line{
		Pc:      pc,
		Op:      byte(op),
		OpName:  op.String(),
		Gas:     fmt.Sprintf("0x%x", gas),
		GasCost: fmt.Sprintf("0x%x", cost),
		MemSize: memory.Len(),
		Depth:   depth,
	}
	if t.refund != nil {
		line.Refund = t.refund()
	}
	if t.cfg.Stack {
		line.Stack = renderStack(stack)
	}
	if t.cfg.Memory && memory.Len() > 0 {
		line.Memory = fmt.Sprintf("0x%x", memory.Data())
	}
	if err != nil {
		line.Error = err.Error()
	}

	t.lines = append(t.lines, line)
	if t.w != nil {
		t.writeLine(line)
	}
}

func (t *EIP3155Tracer) CaptureEnd(output []byte, gasUsed uint64, err error) {
	t.output = output
	t.gasUsed = gasUsed
	t.err = err
	if t.cfg.ReturnData && len(t.lines) > 0 {
		t.lines[len(t.lines)-1].ReturnData = fmt.Sprintf("0x%x", output)
	}
}

func (t *EIP3155Tracer) CaptureEnter(kind vm.CallKind, from, to types.Address, input []byte, gas uint64, value *num.U256) {
}

func (t *EIP3155Tracer) CaptureExit(output []byte, gasUsed uint64, err error) {}

func renderStack(stack *vm.Stack) []string {
	data := stack.Data()
	out := make([]string, len(data))
	for i, v := range data {
		out[i] = v.Hex()
	}
	return out
}

func (t *EIP3155Tracer) writeLine(l Line) {
	b, err := json.Marshal(l)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = t.w.Write(b)
}

// Lines returns every Line captured since the last CaptureStart.
func (t *EIP3155Tracer) Lines() []Line { return t.lines }

// Output returns the return data from the traced top-level call.
func (t *EIP3155Tracer) Output() []byte { return t.output }

// GasUsed returns gas consumed by the traced top-level call.
func (t *EIP3155Tracer) GasUsed() uint64 { return t.gasUsed }

// Error returns the error from the traced top-level call, if any.
func (t *EIP3155Tracer) Error() error { return t.err }

var _ vm.EVMLogger = (*EIP3155Tracer)(nil)
