package vm

import (
	"github.com/evmforge/evmcore/core/vm/num"
)

// stackLimit is the maximum number of 256-bit words an execution frame's
// stack may hold at once (§4.3).
const stackLimit = 1024

// Stack is the EVM operand stack: up to 1024 256-bit words.
type Stack struct {
	data []*num.U256
}

func newStack() *Stack {
	return &Stack{data: make([]*num.U256, 0, 16)}
}

func (st *Stack) push(v *num.U256) { st.data = append(st.data, v) }

func (st *Stack) pop() *num.U256 {
	n := len(st.data) - 1
	v := st.data[n]
	st.data = st.data[:n]
	return v
}

// peek returns the top element without removing it.
func (st *Stack) peek() *num.U256 { return st.data[len(st.data)-1] }

// Back returns the nth element from the top (0-indexed: 0 = top), without
// removing it.
func (st *Stack) Back(n int) *num.U256 { return st.data[len(st.data)-1-n] }

func (st *Stack) swap(n int) {
	top := len(st.data) - 1
	st.data[top], st.data[top-n] = st.data[top-n], st.data[top]
}

func (st *Stack) dup(n int) {
	st.data = append(st.data, new(num.U256).Set(st.data[len(st.data)-n]))
}

// Len returns the number of items currently on the stack.
func (st *Stack) Len() int { return len(st.data) }

// Data returns the underlying slice, bottom to top; used by tracers.
func (st *Stack) Data() []*num.U256 { return st.data }
