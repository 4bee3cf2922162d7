package vm

import (
	"github.com/evmforge/evmcore/core/state"
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
	"github.com/evmforge/evmcore/params"
	"github.com/evmforge/evmcore/precompiles"
)

// MaxCallDepth is the deepest nested message-call chain allowed before
// every further CALL/CREATE fails without consuming the parent's gas
// beyond the constant call cost (§4.1 invariant: depth <= 1024).
const MaxCallDepth = 1024

// MaxCodeSize is the EIP-170 contract code size limit.
const MaxCodeSize = 24576

// MaxInitCodeSize is the EIP-3860 init-code size limit (2x MaxCodeSize).
const MaxInitCodeSize = 2 * MaxCodeSize

// BlockContext carries the per-block values opcodes like COINBASE,
// NUMBER, TIMESTAMP, PREVRANDAO, BASEFEE and BLOCKHASH read (§4.4).
type BlockContext struct {
	Coinbase    types.Address
	GasLimit    uint64
	BlockNumber *num.U256
	Time        uint64
	Difficulty  *num.U256 // pre-Merge PoW difficulty; PREVRANDAO value post-Merge
	BaseFee     *num.U256 // nil before London
	BlobBaseFee *num.U256 // nil before Cancun

	// GetHash returns the hash of the ancestor block at the given
	// number, or the zero hash if it is out of the 256-block window
	// BLOCKHASH is allowed to see.
	GetHash func(number uint64) types.Hash
}

// TxContext carries the per-transaction values ORIGIN, GASPRICE and
// BLOBHASH read (§4.4).
type TxContext struct {
	Origin     types.Address
	GasPrice   *num.U256
	BlobHashes []types.Hash
}

// Config bundles optional interpreter hooks: a tracer and a precompile
// set override (tests may substitute a reduced precompile set).
type Config struct {
	Tracer      EVMLogger
	Precompiles map[types.Address]precompiles.PrecompiledContract
}

// EVM is the shared context for a chain of nested message calls: the
// world state, block/tx context, active fork rules, and call depth
// (§4.1, §4.4).
type EVM struct {
	State *state.State

	BlockContext BlockContext
	TxContext    TxContext
	ChainConfig  *params.ChainConfig
	rules        params.Rules
	jumpTable    JumpTable

	config Config

	depth int

	// abort is set by the tracer or an external caller to stop execution
	// between opcodes (used by request-cancellation, not required by
	// the protocol itself).
	abort bool
}

// NewEVM constructs an EVM ready to execute message calls at the given
// block/tx context.
func NewEVM(blockCtx BlockContext, txCtx TxContext, st *state.State, chainConfig *params.ChainConfig, cfg Config) *EVM {
	rules := chainConfig.Rules(blockCtx.BlockNumber.ToBig(), blockCtx.Time)
	evm := &EVM{
		State:        st,
		BlockContext: blockCtx,
		TxContext:    txCtx,
		ChainConfig:  chainConfig,
		rules:        rules,
		jumpTable:    JumpTableForRules(rules),
		config:       cfg,
	}
	if evm.config.Precompiles == nil {
		evm.config.Precompiles = precompiles.Active(rules)
	}
	return evm
}

// Rules returns the resolved fork rules this EVM is executing under.
func (evm *EVM) Rules() params.Rules { return evm.rules }

// Depth returns the current nested-call depth (0 at the top level).
func (evm *EVM) Depth() int { return evm.depth }

// CallKind distinguishes the four call-family opcodes for the purposes
// of value transfer and storage-context selection (§4.1).
type CallKind int

const (
	CallKindCall CallKind = iota
	CallKindCallCode
	CallKindDelegateCall
	CallKindStaticCall
)

// Call executes a message call of the given kind (§4.1, §4.5). It
// returns the callee's output data, the gas left over, and an error
// that is non-nil for both exceptional halts and explicit reverts —
// callers distinguish the two with IsExceptionalHalt.
func (evm *EVM) Call(kind CallKind, caller types.Address, addr types.Address, input []byte, gas uint64, value *num.U256, staticCtx bool) (out []byte, leftoverGas uint64, callErr error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, haltErr(ErrDepth)
	}
	if kind == CallKindCall || kind == CallKindCallCode {
		if value.Sign() != 0 {
			if evm.State.GetAccount(caller).Balance.Cmp(value) < 0 {
				return nil, gas, haltErr(ErrInsufficientBalance)
			}
		}
	}
	if staticCtx && value.Sign() != 0 && kind == CallKindCall {
		return nil, gas, haltErr(ErrWriteProtection)
	}

	if tracer := evm.config.Tracer; tracer != nil {
		if evm.depth == 0 {
			tracer.CaptureStart(caller, addr, false, input, gas, value)
		} else {
			tracer.CaptureEnter(kind, caller, addr, input, gas, value)
		}
		topLevel := evm.depth == 0
		defer func() {
			gasUsed := gas - leftoverGas
			if topLevel {
				tracer.CaptureEnd(out, gasUsed, callErr)
			} else {
				tracer.CaptureExit(out, gasUsed, callErr)
			}
		}()
	}

	evm.State.BeginTransaction()

	var codeExecAddr, storageAddr, execCaller types.Address
	switch kind {
	case CallKindCall:
		codeExecAddr, storageAddr, execCaller = addr, addr, caller
	case CallKindCallCode:
		codeExecAddr, storageAddr, execCaller = addr, caller, caller
	case CallKindDelegateCall:
		codeExecAddr, storageAddr, execCaller = addr, caller, caller
	case CallKindStaticCall:
		codeExecAddr, storageAddr, execCaller = addr, addr, caller
	}

	if kind == CallKindCall || kind == CallKindCallCode {
		if !evm.State.AccountExists(storageAddr) && value.Sign() != 0 {
			evm.State.CreateAccount(storageAddr)
		}
		if kind == CallKindCall {
			evm.State.MoveEther(caller, storageAddr, value)
		} else if value.Sign() != 0 {
			// CALLCODE transfers value from caller to itself: no-op
			// balance movement, but still touches the account.
			evm.State.TouchAccount(storageAddr)
		}
	}

	code := evm.resolveCode(codeExecAddr)
	_, isPrecompile := evm.config.Precompiles[codeExecAddr]

	if len(code) == 0 && !isPrecompile {
		evm.State.CommitTransaction()
		return nil, gas, nil
	}

	// DELEGATECALL passes the parent frame's own CALLVALUE through as
	// `value` (it transfers nothing); every other kind passes the value
	// actually being moved.
	contract := NewContract(execCaller, storageAddr, codeExecAddr, value, gas, code, staticCtx || kind == CallKindStaticCall)

	evm.depth++
	ret, err := evm.run(contract)
	evm.depth--

	if err != nil {
		evm.State.RollbackTransaction()
		if !IsExceptionalHalt(err) {
			return ret, contract.Gas, err // revert: caller keeps contract.Gas
		}
		return nil, 0, err // exceptional halt: all gas consumed
	}
	evm.State.CommitTransaction()
	return ret, contract.Gas, nil
}

// resolveCode returns the code to execute at addr, resolving an EIP-7702
// delegation designation to the delegate's code if present (§3).
func (evm *EVM) resolveCode(addr types.Address) []byte {
	acc := evm.State.GetAccountOptional(addr)
	if acc == nil {
		return nil
	}
	if target, ok := types.DelegationDesignation(acc.Code); ok {
		if _, ok := evm.config.Precompiles[target]; ok {
			// EIP-7702: delegating to a precompile address executes no
			// code (precompiles are not reachable through delegation).
			return nil
		}
		delegate := evm.State.GetAccountOptional(target)
		if delegate == nil {
			return nil
		}
		return delegate.Code
	}
	return acc.Code
}

// run dispatches to a precompile if contract.CodeAddr names one,
// otherwise executes bytecode through the interpreter (§4.1, §6).
func (evm *EVM) run(contract *Contract) ([]byte, error) {
	if pc, ok := evm.config.Precompiles[contract.CodeAddr]; ok {
		return runPrecompile(pc, contract)
	}
	return newInterpreter(evm, contract).loop()
}

func runPrecompile(pc precompiles.PrecompiledContract, contract *Contract) ([]byte, error) {
	gasCost := pc.RequiredGas(contract.Input)
	if !contract.UseGas(gasCost) {
		return nil, haltErr(ErrOutOfGas)
	}
	out, err := pc.Run(contract.Input)
	if err != nil {
		return nil, haltErr(err)
	}
	return out, nil
}

// Create executes a CREATE/CREATE2 message (§4.1, §4.5) at newAddr, which
// the caller derives: it checks for collisions, installs the init code's
// runtime output, and charges EIP-170/3541/3860 validation costs.
func (evm *EVM) Create(caller types.Address, initCode []byte, gas uint64, value *num.U256, newAddr types.Address) ([]byte, types.Address, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, types.Address{}, gas, haltErr(ErrDepth)
	}
	if evm.rules.IsShanghai && uint64(len(initCode)) > MaxInitCodeSize {
		return nil, types.Address{}, gas, haltErr(ErrMaxInitCodeSizeExceeded)
	}
	if value.Sign() != 0 && evm.State.GetAccount(caller).Balance.Cmp(value) < 0 {
		return nil, types.Address{}, gas, haltErr(ErrInsufficientBalance)
	}
	if evm.State.AccountHasCodeOrNonce(newAddr) || evm.State.AccountHasStorage(newAddr) {
		return nil, types.Address{}, 0, haltErr(ErrContractAddressCollision)
	}

	evm.State.BeginTransaction()

	existedEmpty := evm.State.AccountExists(newAddr)
	if !existedEmpty {
		evm.State.CreateAccount(newAddr)
	} else {
		evm.State.MarkAccountCreated(newAddr)
	}
	evm.State.IncrementNonce(newAddr)
	if evm.rules.IsEIP158 {
		evm.State.IncrementNonce(caller)
	} else {
		// pre-EIP-161 nonce bump on the creator happens at the
		// transaction/CREATE-opcode call site rather than here.
	}
	evm.State.MoveEther(caller, newAddr, value)

	contract := NewContract(caller, newAddr, newAddr, value, gas, initCode, false)
	evm.depth++
	ret, err := newInterpreter(evm, contract).loop()
	evm.depth--

	if err != nil {
		evm.State.RollbackTransaction()
		if !IsExceptionalHalt(err) {
			return nil, newAddr, contract.Gas, err
		}
		return nil, newAddr, 0, err
	}

	if evm.rules.IsLondon && len(ret) > 0 && ret[0] == 0xEF {
		evm.State.RollbackTransaction()
		return nil, newAddr, 0, haltErr(ErrInvalidCodeEntry)
	}
	if uint64(len(ret)) > MaxCodeSize {
		evm.State.RollbackTransaction()
		return nil, newAddr, 0, haltErr(ErrMaxCodeSizeExceeded)
	}
	codeCost := uint64(len(ret)) * 200
	if !contract.UseGas(codeCost) {
		evm.State.RollbackTransaction()
		return nil, newAddr, 0, haltErr(ErrOutOfGas)
	}
	evm.State.SetCode(newAddr, ret)
	evm.State.CommitTransaction()
	return ret, newAddr, contract.Gas, nil
}
