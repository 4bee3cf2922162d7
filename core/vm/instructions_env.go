package vm

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

// This file groups the opcodes that read caller/call/block/transaction
// context rather than computing on stack values (§4.3, §4.4). The
// Keccak-256 hash function itself is consumed from go-ethereum/crypto,
// consistent with spec §6 treating hash primitives as external.

func pushAddress(f *frame, addr types.Address) {
	f.stack.push(new(num.U256).SetBytes(addr.Bytes()))
}

func opKeccak256(f *frame) error {
	offset, size := f.stack.pop(), f.stack.peek()
	data := f.memory.get(offset.Uint64(), size.Uint64())
	size.SetBytes(crypto.Keccak256(data))
	return nil
}

func opAddress(f *frame) error {
	pushAddress(f, f.address())
	return nil
}

func opBalance(f *frame) error {
	addr := addressFromStack(f.stack.peek())
	bal := f.evm.State.GetAccount(addr).Balance
	f.stack.peek().Set(bal)
	return nil
}

func opOrigin(f *frame) error {
	pushAddress(f, f.evm.TxContext.Origin)
	return nil
}

func opCaller(f *frame) error {
	pushAddress(f, f.caller())
	return nil
}

func opCallvalue(f *frame) error {
	f.stack.push(new(num.U256).Set(f.value()))
	return nil
}

func opCalldataload(f *frame) error {
	offset := f.stack.peek()
	if !offset.IsUint64() {
		offset.Clear()
		return nil
	}
	off := offset.Uint64()
	var window [32]byte
	if off < uint64(len(f.contract.Input)) {
		copy(window[:], f.contract.Input[off:])
	}
	offset.SetBytes(window[:])
	return nil
}

func opCalldatasize(f *frame) error {
	f.stack.push(num.FromUint64(uint64(len(f.contract.Input))))
	return nil
}

func opCalldatacopy(f *frame) error {
	destOffset, offset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	data := boundedSlice(f.contract.Input, offset, length)
	f.memory.set(destOffset.Uint64(), length.Uint64(), data)
	return nil
}

func opCodesize(f *frame) error {
	f.stack.push(num.FromUint64(uint64(len(f.contract.Code))))
	return nil
}

func opCodecopy(f *frame) error {
	destOffset, offset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	data := boundedSlice(f.contract.Code, offset, length)
	f.memory.set(destOffset.Uint64(), length.Uint64(), data)
	return nil
}

func opGasprice(f *frame) error {
	f.stack.push(new(num.U256).Set(f.evm.TxContext.GasPrice))
	return nil
}

func opExtcodesize(f *frame) error {
	addr := addressFromStack(f.stack.peek())
	code := f.evm.State.GetAccount(addr).Code
	f.stack.peek().SetUint64(uint64(len(code)))
	return nil
}

func opExtcodecopy(f *frame) error {
	addr := addressFromStack(f.stack.pop())
	destOffset, offset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	code := f.evm.State.GetAccount(addr).Code
	data := boundedSlice(code, offset, length)
	f.memory.set(destOffset.Uint64(), length.Uint64(), data)
	return nil
}

func opReturndatasize(f *frame) error {
	f.stack.push(num.FromUint64(uint64(len(f.lastReturnData))))
	return nil
}

func opReturndatacopy(f *frame) error {
	destOffset, offset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	if !offset.IsUint64() || !length.IsUint64() {
		return haltErr(ErrReturnDataOutOfBounds)
	}
	off, n := offset.Uint64(), length.Uint64()
	if off+n < off || off+n > uint64(len(f.lastReturnData)) {
		return haltErr(ErrReturnDataOutOfBounds)
	}
	f.memory.set(destOffset.Uint64(), n, f.lastReturnData[off:off+n])
	return nil
}

func opExtcodehash(f *frame) error {
	addr := addressFromStack(f.stack.peek())
	if !f.evm.State.IsAccountAlive(addr) {
		f.stack.peek().Clear()
		return nil
	}
	code := f.evm.State.GetAccount(addr).Code
	h := crypto.Keccak256Hash(code)
	f.stack.peek().SetBytes(h.Bytes())
	return nil
}

func opBlockhash(f *frame) error {
	num256 := f.stack.peek()
	if !num256.IsUint64() {
		num256.Clear()
		return nil
	}
	h := f.evm.BlockContext.GetHash(num256.Uint64())
	num256.SetBytes(h.Bytes())
	return nil
}

func opCoinbase(f *frame) error {
	pushAddress(f, f.evm.BlockContext.Coinbase)
	return nil
}

func opTimestamp(f *frame) error {
	f.stack.push(num.FromUint64(f.evm.BlockContext.Time))
	return nil
}

func opNumber(f *frame) error {
	f.stack.push(new(num.U256).Set(f.evm.BlockContext.BlockNumber))
	return nil
}

func opPrevrandao(f *frame) error {
	f.stack.push(new(num.U256).Set(f.evm.BlockContext.Difficulty))
	return nil
}

func opGaslimit(f *frame) error {
	f.stack.push(num.FromUint64(f.evm.BlockContext.GasLimit))
	return nil
}

func opChainid(f *frame) error {
	chainID := new(num.U256)
	chainID.SetFromBig(f.evm.rules.ChainID)
	f.stack.push(chainID)
	return nil
}

func opSelfbalance(f *frame) error {
	f.stack.push(new(num.U256).Set(f.evm.State.GetAccount(f.address()).Balance))
	return nil
}

func opBasefee(f *frame) error {
	f.stack.push(new(num.U256).Set(f.evm.BlockContext.BaseFee))
	return nil
}

func opBlobhash(f *frame) error {
	idx := f.stack.peek()
	hashes := f.evm.TxContext.BlobHashes
	if idx.IsUint64() && idx.Uint64() < uint64(len(hashes)) {
		idx.SetBytes(hashes[idx.Uint64()].Bytes())
	} else {
		idx.Clear()
	}
	return nil
}

func opBlobbasefee(f *frame) error {
	f.stack.push(new(num.U256).Set(f.evm.BlockContext.BlobBaseFee))
	return nil
}

// boundedSlice returns src[offset:offset+length], zero-padded past src's
// end, the way CALLDATACOPY/CODECOPY/EXTCODECOPY read past the end of
// their source buffer (§4.3).
func boundedSlice(src []byte, offset, length *num.U256) []byte {
	n := length.Uint64()
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	if !offset.IsUint64() {
		return out
	}
	off := offset.Uint64()
	if off >= uint64(len(src)) {
		return out
	}
	copy(out, src[off:])
	return out
}
