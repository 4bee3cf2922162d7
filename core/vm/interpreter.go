package vm

// interpreter runs one call frame's bytecode to completion: fetch,
// validate, charge gas, optionally grow memory, execute (§4.1, §4.3).
type interpreter struct {
	f *frame
}

func newInterpreter(evm *EVM, contract *Contract) *interpreter {
	return &interpreter{f: newFrame(evm, contract)}
}

// loop is the fetch-decode-execute cycle. It returns the frame's output
// data and a nil error on a clean STOP/RETURN/SELFDESTRUCT, the output
// plus ErrExecutionReverted on an explicit REVERT, or a nil slice plus an
// ExceptionalHalt-wrapped error on any other halting condition (§4.6).
func (in *interpreter) loop() ([]byte, error) {
	f := in.f

	for {
		op := f.contract.GetOp(f.pc)
		opInfo := f.evm.jumpTable[op]
		if opInfo == nil || opInfo.execute == nil {
			return nil, haltErr(ErrInvalidOpcode)
		}
		if f.stack.Len() < opInfo.minStack {
			return nil, haltErr(ErrStackUnderflow)
		}
		if f.stack.Len() > opInfo.maxStack {
			return nil, haltErr(ErrStackOverflow)
		}
		if opInfo.writes && f.contract.IsStatic {
			return nil, haltErr(ErrWriteProtection)
		}

		pcAtFetch := f.pc
		gasBefore := f.contract.Gas

		if !f.contract.UseGas(opInfo.constantGas) {
			return nil, haltErr(ErrOutOfGas)
		}

		var memSize uint64
		if opInfo.memorySize != nil {
			memSize = opInfo.memorySize(f.stack)
		}
		if opInfo.dynamicGas != nil {
			dyn, err := opInfo.dynamicGas(f, memSize)
			if err != nil {
				return nil, haltErr(err)
			}
			if !f.contract.UseGas(dyn) {
				return nil, haltErr(ErrOutOfGas)
			}
		}
		if opInfo.memorySize != nil {
			f.requireMemory(memSize)
		}

		if tracer := f.evm.config.Tracer; tracer != nil {
			tracer.CaptureState(pcAtFetch, op, gasBefore, gasBefore-f.contract.Gas, f.stack, f.memory, f.evm.depth, nil)
		}

		// pc advances before execute runs so JUMP/JUMPI can overwrite it,
		// and so PUSH reads its immediate data starting right after the
		// opcode byte.
		f.pc++
		err := opInfo.execute(f)

		if opInfo.halts {
			return f.output, err
		}
		if err != nil {
			return nil, err
		}
	}
}
