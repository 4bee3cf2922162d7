package vm

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/evmforge/evmcore/core/vm/num"
)

// This file groups CREATE/CALL-family opcodes (§4.1, §4.5): every
// opcode here opens a nested EVM.Call/EVM.Create frame, so none of them
// propagate the child's error up through the interpreter loop — a
// failed child call only clears the stack success flag and lets
// execution continue in the parent frame.

// writeReturnData copies min(retLength, len(ret)) bytes of a child
// call's output into memory at retOffset, the way CALL/CALLCODE/
// DELEGATECALL/STATICCALL stage their return-data window (§4.5).
func writeReturnData(f *frame, retOffset, retLength *num.U256, ret []byte) {
	n := retLength.Uint64()
	if uint64(len(ret)) < n {
		n = uint64(len(ret))
	}
	if n > 0 {
		f.memory.set(retOffset.Uint64(), n, ret[:n])
	}
}

// callChildGas resolves the gas stack argument against the EIP-150
// 63/64 cap: a requested amount that doesn't fit in a uint64 is taken
// to mean "forward everything available" (it can never be less than
// the cap anyway).
func callChildGas(f *frame, requested *num.U256) uint64 {
	available := callGas63_64(f.contract.Gas)
	if requested.IsUint64() && requested.Uint64() < available {
		available = requested.Uint64()
	}
	return available
}

func opCreate(f *frame) error {
	value, offset, length := f.stack.pop(), f.stack.pop(), f.stack.pop()
	initCode := f.memory.get(offset.Uint64(), length.Uint64())

	caller := f.address()
	newAddr := crypto.CreateAddress(caller, f.evm.State.GetAccount(caller).Nonce)
	if !f.evm.rules.IsEIP158 {
		f.evm.State.IncrementNonce(caller)
	}

	gas := callGas63_64(f.contract.Gas)
	f.contract.UseGas(gas)

	ret, addr, leftoverGas, err := f.evm.Create(caller, initCode, gas, value, newAddr)
	f.contract.Gas += leftoverGas
	f.lastReturnData = ret

	if err != nil {
		f.stack.push(num.Zero())
		return nil
	}
	pushAddress(f, addr)
	return nil
}

func opCreate2(f *frame) error {
	value, offset, length, saltU := f.stack.pop(), f.stack.pop(), f.stack.pop(), f.stack.pop()
	initCode := f.memory.get(offset.Uint64(), length.Uint64())
	salt := saltU.Bytes32()

	caller := f.address()
	newAddr := crypto.CreateAddress2(caller, salt, crypto.Keccak256(initCode))

	gas := callGas63_64(f.contract.Gas)
	f.contract.UseGas(gas)

	ret, addr, leftoverGas, err := f.evm.Create(caller, initCode, gas, value, newAddr)
	f.contract.Gas += leftoverGas
	f.lastReturnData = ret

	if err != nil {
		f.stack.push(num.Zero())
		return nil
	}
	pushAddress(f, addr)
	return nil
}

func opCall(f *frame) error {
	gasU, addrU, value := f.stack.pop(), f.stack.pop(), f.stack.pop()
	argsOffset, argsLength, retOffset, retLength := f.stack.pop(), f.stack.pop(), f.stack.pop(), f.stack.pop()

	addr := addressFromStack(addrU)
	args := f.memory.get(argsOffset.Uint64(), argsLength.Uint64())

	valueNonZero := !value.IsZero()
	extra := uint64(0)
	if valueNonZero {
		extra += GasCallValue
		if !f.evm.State.IsAccountAlive(addr) {
			extra += GasNewAccount
		}
	}
	if !f.contract.UseGas(extra) {
		return haltErr(ErrOutOfGas)
	}

	childGas := callChildGas(f, gasU)
	f.contract.UseGas(childGas)
	if valueNonZero {
		childGas += GasCallStipend
	}

	ret, leftoverGas, err := f.evm.Call(CallKindCall, f.address(), addr, args, childGas, value, f.contract.IsStatic)
	f.contract.Gas += leftoverGas
	f.lastReturnData = ret
	writeReturnData(f, retOffset, retLength, ret)

	if err != nil {
		f.stack.push(num.Zero())
	} else {
		f.stack.push(num.One())
	}
	return nil
}

func opCallcode(f *frame) error {
	gasU, addrU, value := f.stack.pop(), f.stack.pop(), f.stack.pop()
	argsOffset, argsLength, retOffset, retLength := f.stack.pop(), f.stack.pop(), f.stack.pop(), f.stack.pop()

	addr := addressFromStack(addrU)
	args := f.memory.get(argsOffset.Uint64(), argsLength.Uint64())

	valueNonZero := !value.IsZero()
	if valueNonZero {
		if !f.contract.UseGas(GasCallValue) {
			return haltErr(ErrOutOfGas)
		}
	}

	childGas := callChildGas(f, gasU)
	f.contract.UseGas(childGas)
	if valueNonZero {
		childGas += GasCallStipend
	}

	ret, leftoverGas, err := f.evm.Call(CallKindCallCode, f.address(), addr, args, childGas, value, f.contract.IsStatic)
	f.contract.Gas += leftoverGas
	f.lastReturnData = ret
	writeReturnData(f, retOffset, retLength, ret)

	if err != nil {
		f.stack.push(num.Zero())
	} else {
		f.stack.push(num.One())
	}
	return nil
}

func opDelegatecall(f *frame) error {
	gasU, addrU := f.stack.pop(), f.stack.pop()
	argsOffset, argsLength, retOffset, retLength := f.stack.pop(), f.stack.pop(), f.stack.pop(), f.stack.pop()

	addr := addressFromStack(addrU)
	args := f.memory.get(argsOffset.Uint64(), argsLength.Uint64())

	childGas := callChildGas(f, gasU)
	f.contract.UseGas(childGas)

	ret, leftoverGas, err := f.evm.Call(CallKindDelegateCall, f.address(), addr, args, childGas, f.value(), f.contract.IsStatic)
	f.contract.Gas += leftoverGas
	f.lastReturnData = ret
	writeReturnData(f, retOffset, retLength, ret)

	if err != nil {
		f.stack.push(num.Zero())
	} else {
		f.stack.push(num.One())
	}
	return nil
}

func opStaticcall(f *frame) error {
	gasU, addrU := f.stack.pop(), f.stack.pop()
	argsOffset, argsLength, retOffset, retLength := f.stack.pop(), f.stack.pop(), f.stack.pop(), f.stack.pop()

	addr := addressFromStack(addrU)
	args := f.memory.get(argsOffset.Uint64(), argsLength.Uint64())

	childGas := callChildGas(f, gasU)
	f.contract.UseGas(childGas)

	ret, leftoverGas, err := f.evm.Call(CallKindStaticCall, f.address(), addr, args, childGas, num.Zero(), true)
	f.contract.Gas += leftoverGas
	f.lastReturnData = ret
	writeReturnData(f, retOffset, retLength, ret)

	if err != nil {
		f.stack.push(num.Zero())
	} else {
		f.stack.push(num.One())
	}
	return nil
}

func opReturn(f *frame) error {
	offset, size := f.stack.pop(), f.stack.pop()
	f.output = f.memory.get(offset.Uint64(), size.Uint64())
	return nil
}

func opRevert(f *frame) error {
	offset, size := f.stack.pop(), f.stack.pop()
	f.output = f.memory.get(offset.Uint64(), size.Uint64())
	f.reverted = true
	return ErrExecutionReverted
}

func opInvalid(f *frame) error {
	return haltErr(ErrInvalidOpcode)
}

// opSelfdestruct is the pre-EIP-6780 SELFDESTRUCT: the account is always
// fully destroyed at transaction finalization regardless of when it was
// created (§4.5).
func opSelfdestruct(f *frame) error {
	beneficiary := addressFromStack(f.stack.pop())
	addr := f.address()
	balance := f.evm.State.GetAccount(addr).Balance
	if !balance.IsZero() && beneficiary != addr {
		f.evm.State.MoveEther(addr, beneficiary, balance)
	}
	f.evm.State.ScheduleDestruction(addr)
	f.output = nil
	return nil
}

// opSelfdestructEIP6780 only actually destroys code and storage if addr
// was created earlier in the same transaction; otherwise it behaves as
// a plain balance transfer and the account survives (EIP-6780). The
// distinction is resolved by the transaction finalizer, which consults
// State.WasCreatedInCurrentTransaction for every address scheduled here.
func opSelfdestructEIP6780(f *frame) error {
	beneficiary := addressFromStack(f.stack.pop())
	addr := f.address()
	balance := f.evm.State.GetAccount(addr).Balance
	if !balance.IsZero() && beneficiary != addr {
		f.evm.State.MoveEther(addr, beneficiary, balance)
	} else if !balance.IsZero() {
		f.evm.State.TouchAccount(addr)
	}
	f.evm.State.ScheduleDestruction(addr)
	f.output = nil
	return nil
}
