package tracer

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm"
	"github.com/evmforge/evmcore/core/vm/num"
	"github.com/evmforge/evmcore/params"
)

// runTrivialCall executes a two-instruction contract (PUSH1 0; STOP)
// under the given tracer and returns after the call completes.
func runTrivialCall(t *testing.T, tr vm.EVMLogger) {
	t.Helper()
	st := state.New()
	caller := types.Address{0x01}
	callee := types.Address{0x02}
	st.CreateAccount(caller)
	st.SetAccountBalance(caller, num.FromUint64(1_000_000))
	st.CreateAccount(callee)
	st.SetCode(callee, []byte{byte(vm.PUSH1), 0x00, byte(vm.STOP)})

	chainConfig := params.MainnetChainConfig()
	blockCtx := vm.BlockContext{
		Coinbase:    types.Address{0x03},
		GasLimit:    30_000_000,
		BlockNumber: num.FromUint64(20_000_000),
		Time:        1_800_000_000,
		GetHash:     func(uint64) types.Hash { return types.Hash{} },
	}
	txCtx := vm.TxContext{Origin: caller, GasPrice: num.One()}

	evm := vm.NewEVM(blockCtx, txCtx, st, chainConfig, vm.Config{Tracer: tr})
	_, _, err := evm.Call(vm.CallKindCall, caller, callee, nil, 100000, num.Zero(), false)
	if err != nil {
		t.Fatalf("unexpected call error: %v", err)
	}
}

func TestEIP3155TracerCapturesSteps(t *testing.T) {
	tr := New(Config{Stack: true, Memory: true})
	var refund uint64 = 42
	tr.SetRefundFunc(func() uint64 { return refund })

	runTrivialCall(t, tr)

	lines := tr.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 traced steps (PUSH1, STOP), got %d", len(lines))
	}
	if lines[0].OpName != "PUSH1" {
		t.Errorf("first step OpName: got %q, want PUSH1", lines[0].OpName)
	}
	if lines[0].Refund != 42 {
		t.Errorf("refund not wired through: got %d, want 42", lines[0].Refund)
	}
	if len(lines[0].Stack) != 0 {
		t.Errorf("stack before PUSH1 executes should be empty, got %v", lines[0].Stack)
	}
	if lines[1].OpName != "STOP" {
		t.Errorf("second step OpName: got %q, want STOP", lines[1].OpName)
	}
	if len(lines[1].Stack) != 1 {
		t.Errorf("stack after PUSH1 should have 1 item before STOP, got %d", len(lines[1].Stack))
	}
}

func TestEIP3155TracerStreamsJSONLines(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreaming(Config{}, &buf)

	runTrivialCall(t, tr)

	dec := json.NewDecoder(&buf)
	count := 0
	for dec.More() {
		var l Line
		if err := dec.Decode(&l); err != nil {
			t.Fatalf("streamed line %d failed to decode as JSON: %v", count, err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 streamed JSON lines, got %d", count)
	}
}

func TestEIP3155TracerWithoutStackOrMemoryOmitsThem(t *testing.T) {
	tr := New(Config{})
	runTrivialCall(t, tr)

	for _, l := range tr.Lines() {
		if l.Stack != nil {
			t.Errorf("stack capture disabled but line has stack: %v", l.Stack)
		}
		if l.Memory != "" {
			t.Errorf("memory capture disabled but line has memory: %q", l.Memory)
		}
	}
}
