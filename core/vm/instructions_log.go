package vm

import "github.com/evmforge/evmcore/core/types"

// makeLog builds the LOG0..LOG4 execution function for n indexed topics
// (§4.5): data comes from memory, topics come straight off the stack.
func makeLog(n int) executionFunc {
	return func(f *frame) error {
		offset, size := f.stack.pop(), f.stack.pop()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			topics[i] = hashFromStack(f.stack.pop())
		}
		data := f.memory.get(offset.Uint64(), size.Uint64())
		f.evm.State.AddLog(&types.Log{
			Address: f.address(),
			Topics:  topics,
			Data:    data,
		})
		return nil
	}
}
