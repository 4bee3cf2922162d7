// Package state implements the journaled world-state (§3, §4.2): a
// mapping address -> account, per-account storage, per-transaction
// transient storage, and a nested snapshot/commit/rollback journal.
package state

import (
	"fmt"

	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

// Log is re-exported for callers that only import state.
type Log = types.Log

// State is the journaled mapping of accounts and storage the
// interpreter and transaction pipeline mutate. It owns the current
// live view of every account and slot; nested checkpoints are taken
// with BeginTransaction/Commit/Rollback (§4.2).
type State struct {
	accounts  map[types.Address]*types.Account
	storage   map[types.Address]map[types.Hash]*num.U256
	transient map[types.Address]map[types.Hash]*num.U256

	touched map[types.Address]struct{}
	created map[types.Address]struct{}

	destructed map[types.Address]struct{} // EIP-6780 scheduled for deletion
	logs       []*Log
	refund     *num.U256

	accessList *accessList

	journal *journal

	// checkpoints is the stack of journal-length markers pushed by
	// BeginTransaction; nested snapshots simply push more markers.
	checkpoints []int
	// txCheckpointDepth is the index into checkpoints recorded by
	// MarkTransactionSnapshot (§4.2); -1 when no transaction is active.
	txCheckpointDepth int
}

// New returns an empty world state.
func New() *State {
	return &State{
		accounts:          make(map[types.Address]*types.Account),
		storage:           make(map[types.Address]map[types.Hash]*num.U256),
		transient:         make(map[types.Address]map[types.Hash]*num.U256),
		touched:           make(map[types.Address]struct{}),
		created:           make(map[types.Address]struct{}),
		destructed:        make(map[types.Address]struct{}),
		refund:            num.Zero(),
		accessList:        newAccessList(),
		journal:           newJournal(),
		txCheckpointDepth: -1,
	}
}

// GetAccountOptional returns the account at addr, or nil if absent.
func (s *State) GetAccountOptional(addr types.Address) *types.Account {
	return s.accounts[addr]
}

// GetAccount returns the account at addr, or a fresh empty account that
// is neither stored nor journaled if addr is absent. Used by read paths
// that need a non-nil account to read zero-valued fields from; mutating
// callers should go through SetAccount/CreateAccount so the journal sees it.
func (s *State) GetAccount(addr types.Address) *types.Account {
	if a := s.accounts[addr]; a != nil {
		return a
	}
	return types.EmptyAccount()
}

// SetAccount installs acc at addr, journaling the previous value.
func (s *State) SetAccount(addr types.Address, acc *types.Account) {
	prev := s.accounts[addr]
	s.journal.append(createAccountChange{addr: addr, prev: prev})
	s.accounts[addr] = acc
}

// CreateAccount is SetAccount for a brand-new empty account plus
// marking it created-this-transaction (§4.2, used by SSTORE original
// value logic and EIP-6780).
func (s *State) CreateAccount(addr types.Address) {
	s.SetAccount(addr, types.EmptyAccount())
	s.MarkAccountCreated(addr)
}

// DestroyAccount removes the account and its storage entirely.
func (s *State) DestroyAccount(addr types.Address) {
	prevAcc := s.accounts[addr]
	prevStorage := s.storage[addr]
	s.journal.append(destroyAccountChange{addr: addr, prev: prevAcc, storage: prevStorage})
	delete(s.accounts, addr)
	delete(s.storage, addr)
}

// DestroyStorage removes every storage slot for addr without touching
// the account record itself.
func (s *State) DestroyStorage(addr types.Address) {
	prevStorage := s.storage[addr]
	if prevStorage == nil {
		return
	}
	s.journal.append(destroyAccountChange{addr: addr, prev: s.accounts[addr], storage: prevStorage})
	delete(s.storage, addr)
}

// MarkAccountCreated records that addr was created during the current
// transaction (consulted by GetStorageOriginal and EIP-6780 SELFDESTRUCT).
func (s *State) MarkAccountCreated(addr types.Address) {
	_, already := s.created[addr]
	s.journal.append(createdAccountMarkChange{addr: addr, wasMarked: already})
	s.created[addr] = struct{}{}
}

// wasCreatedThisTx reports whether addr is in the current transaction's
// created-accounts set.
func (s *State) wasCreatedThisTx(addr types.Address) bool {
	_, ok := s.created[addr]
	return ok
}

// GetStorage returns the current value of a storage slot; zero if absent.
func (s *State) GetStorage(addr types.Address, key types.Hash) *num.U256 {
	if slots := s.storage[addr]; slots != nil {
		if v, ok := slots[key]; ok {
			return new(num.U256).Set(v)
		}
	}
	return num.Zero()
}

// SetStorage writes value to a storage slot. Writing zero deletes the
// slot (§4.2: "a storage trie with zero entries is removed" — here that
// means the slot map for addr becomes empty and is pruned).
func (s *State) SetStorage(addr types.Address, key types.Hash, value *num.U256) {
	slots := s.storage[addr]
	var prev *num.U256
	prevExists := false
	if slots != nil {
		prev, prevExists = slots[key]
	}
	s.journal.append(storageChange{addr: addr, key: key, prev: prev, prevExists: prevExists})

	if value.IsZero() {
		if slots != nil {
			delete(slots, key)
			if len(slots) == 0 {
				delete(s.storage, addr)
			}
		}
		return
	}
	if slots == nil {
		slots = make(map[types.Hash]*num.U256)
		s.storage[addr] = slots
	}
	slots[key] = new(num.U256).Set(value)
}

// GetStorageOriginal returns the value a slot held at the start of the
// current transaction, or zero if the account was created during this
// transaction (a created account has no "original" storage — §4.2).
func (s *State) GetStorageOriginal(addr types.Address, key types.Hash) *num.U256 {
	if s.wasCreatedThisTx(addr) {
		return num.Zero()
	}
	if s.txCheckpointDepth < 0 || s.txCheckpointDepth >= len(s.checkpoints) {
		return s.GetStorage(addr, key)
	}
	// Replay the journal backwards from the live value to the mark at
	// transaction start, undoing only storageChange entries for this
	// (addr,key) pair — equivalent to reading the pre-transaction
	// snapshot without maintaining a second full copy.
	mark := s.checkpoints[s.txCheckpointDepth]
	val := s.GetStorage(addr, key)
	found := false
	for i := len(s.journal.entries) - 1; i >= mark; i-- {
		if sc, ok := s.journal.entries[i].(storageChange); ok && sc.addr == addr && sc.key == key {
			if sc.prevExists {
				val = sc.prev
			} else {
				val = num.Zero()
			}
			found = true
		}
	}
	_ = found
	return val
}

// TouchAccount records addr as touched in the current transaction.
func (s *State) TouchAccount(addr types.Address) {
	_, already := s.touched[addr]
	s.journal.append(touchChange{addr: addr, wasTouched: already})
	s.touched[addr] = struct{}{}
}

// IsTouched reports whether addr has been touched this transaction.
func (s *State) IsTouched(addr types.Address) bool {
	_, ok := s.touched[addr]
	return ok
}

// MoveEther transfers amount from one account to another. Insufficient
// balance is an invariant violation (§7 axis 3): the caller must have
// already checked affordability, so this panics rather than returning
// an error.
func (s *State) MoveEther(from, to types.Address, amount *num.U256) {
	if amount.IsZero() {
		s.TouchAccount(to)
		return
	}
	fromAcc := s.accounts[from]
	if fromAcc == nil || fromAcc.Balance.Cmp(amount) < 0 {
		panic(fmt.Sprintf("state: move_ether: insufficient balance for %x", from))
	}
	s.SetAccountBalance(from, new(num.U256).Sub(fromAcc.Balance, amount))
	toAcc := s.accounts[to]
	var toBal *num.U256
	if toAcc == nil {
		toBal = num.Zero()
	} else {
		toBal = toAcc.Balance
	}
	s.SetAccountBalance(to, new(num.U256).Add(toBal, amount))
	s.TouchAccount(to)
}

// SetAccountBalance sets addr's balance, creating the account if absent.
func (s *State) SetAccountBalance(addr types.Address, bal *num.U256) {
	acc := s.accounts[addr]
	if acc == nil {
		s.SetAccount(addr, &types.Account{Balance: new(num.U256).Set(bal)})
		return
	}
	s.journal.append(balanceChange{addr: addr, prev: acc.Balance})
	acc.Balance = new(num.U256).Set(bal)
}

// IncrementNonce bumps addr's nonce by one, creating the account if absent.
func (s *State) IncrementNonce(addr types.Address) {
	acc := s.accounts[addr]
	if acc == nil {
		acc = types.EmptyAccount()
		s.SetAccount(addr, acc)
		acc = s.accounts[addr]
	}
	s.journal.append(nonceChange{addr: addr, prev: acc.Nonce})
	acc.Nonce++
}

// SetCode installs code on addr, creating the account if absent.
func (s *State) SetCode(addr types.Address, code []byte) {
	acc := s.accounts[addr]
	if acc == nil {
		acc = types.EmptyAccount()
		s.SetAccount(addr, acc)
		acc = s.accounts[addr]
	}
	s.journal.append(codeChange{addr: addr, prev: acc.Code})
	acc.Code = code
}

// AccountExists reports whether addr has any account record at all
// (including an empty one).
func (s *State) AccountExists(addr types.Address) bool {
	_, ok := s.accounts[addr]
	return ok
}

// AccountHasCodeOrNonce reports whether addr has non-empty code or a
// non-zero nonce (used by CREATE/CREATE2 collision checks).
func (s *State) AccountHasCodeOrNonce(addr types.Address) bool {
	acc := s.accounts[addr]
	return acc != nil && (len(acc.Code) > 0 || acc.Nonce != 0)
}

// AccountHasStorage reports whether addr currently has any non-zero
// storage slots.
func (s *State) AccountHasStorage(addr types.Address) bool {
	return len(s.storage[addr]) > 0
}

// IsAccountAlive reports whether addr exists and is not empty (EIP-161:
// "alive" == exists and not (nonce=0 ∧ code=∅ ∧ balance=0)).
func (s *State) IsAccountAlive(addr types.Address) bool {
	acc := s.accounts[addr]
	return acc != nil && !acc.IsEmpty()
}

// AccountExistsAndIsEmpty reports whether addr exists and is the empty
// account (used by touched-empty pruning, §4.8 step 2 / EIP-161).
func (s *State) AccountExistsAndIsEmpty(addr types.Address) bool {
	acc := s.accounts[addr]
	return acc != nil && acc.IsEmpty()
}

// ModifyState applies f to addr's account, then — when eip161 is true —
// destroys the account if the result is empty (§4.2).
func (s *State) ModifyState(addr types.Address, eip161 bool, f func(*types.Account)) {
	acc := s.accounts[addr]
	if acc == nil {
		acc = types.EmptyAccount()
		s.SetAccount(addr, acc)
		acc = s.accounts[addr]
	}
	f(acc)
	if eip161 && acc.IsEmpty() {
		s.DestroyAccount(addr)
	}
}

// AddLog appends a log entry to the current transaction's log list.
func (s *State) AddLog(lg *Log) {
	s.logs = append(s.logs, lg)
	s.journal.append(logChange{})
}

// Logs returns the accumulated logs since the last checkpoint at depth 0
// (callers typically drain these per-transaction via TxLogs).
func (s *State) Logs() []*Log { return s.logs }

// TxLogs returns and clears the logs accumulated so far (called once per
// transaction by ProcessTransaction after it commits the transaction's
// checkpoint, whether or not execution succeeded).
func (s *State) TxLogs() []*Log {
	logs := s.logs
	s.logs = nil
	return logs
}

// Refund returns the current gas-refund counter.
func (s *State) Refund() *num.U256 { return s.refund }

// AddRefund increases the refund counter.
func (s *State) AddRefund(amount *num.U256) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund = new(num.U256).Add(s.refund, amount)
}

// SubRefund decreases the refund counter; it never goes negative.
func (s *State) SubRefund(amount *num.U256) {
	s.journal.append(refundChange{prev: s.refund})
	if s.refund.Cmp(amount) < 0 {
		s.refund = num.Zero()
		return
	}
	s.refund = new(num.U256).Sub(s.refund, amount)
}

// GetTransientStorage reads a transient (EIP-1153) slot; lifetime is one
// transaction (cleared by ClearTransientStorage at transaction end).
func (s *State) GetTransientStorage(addr types.Address, key types.Hash) *num.U256 {
	if slots := s.transient[addr]; slots != nil {
		if v, ok := slots[key]; ok {
			return new(num.U256).Set(v)
		}
	}
	return num.Zero()
}

// SetTransientStorage writes a transient slot.
func (s *State) SetTransientStorage(addr types.Address, key types.Hash, value *num.U256) {
	slots := s.transient[addr]
	var prev *num.U256
	prevExists := false
	if slots != nil {
		prev, prevExists = slots[key]
	}
	s.journal.append(transientStorageChange{addr: addr, key: key, prev: prev, prevExists: prevExists})
	if value.IsZero() {
		if slots != nil {
			delete(slots, key)
		}
		return
	}
	if slots == nil {
		slots = make(map[types.Hash]*num.U256)
		s.transient[addr] = slots
	}
	slots[key] = new(num.U256).Set(value)
}

// ClearTransientStorage discards all transient storage (called once at
// the end of every transaction, so no transient write leaks into the
// next one). The clear itself is not journaled.
func (s *State) ClearTransientStorage() {
	s.transient = make(map[types.Address]map[types.Hash]*num.U256)
}

// ScheduleDestruction marks addr for deletion at transaction end
// (SELFDESTRUCT, §4.5).
func (s *State) ScheduleDestruction(addr types.Address) {
	_, already := s.destructed[addr]
	s.journal.append(destructChange{addr: addr, wasScheduled: already})
	s.destructed[addr] = struct{}{}
}

// IsScheduledForDestruction reports whether addr was SELFDESTRUCTed.
func (s *State) IsScheduledForDestruction(addr types.Address) bool {
	_, ok := s.destructed[addr]
	return ok
}

// DestroyTouchedEmptyAccounts removes every touched account that is
// currently empty (EIP-161, run once per transaction post-Spurious
// Dragon, §4.8 step 2).
func (s *State) DestroyTouchedEmptyAccounts() {
	for addr := range s.touched {
		if s.AccountExistsAndIsEmpty(addr) {
			s.DestroyAccount(addr)
		}
	}
}

// BeginTransaction pushes a new checkpoint and returns its id (the
// checkpoint stack depth), mirroring begin_transaction (§4.2).
func (s *State) BeginTransaction() int {
	s.checkpoints = append(s.checkpoints, s.journal.length())
	return len(s.checkpoints) - 1
}

// CommitTransaction pops the top checkpoint without reverting: changes
// made since BeginTransaction remain live.
func (s *State) CommitTransaction() {
	if len(s.checkpoints) == 0 {
		return
	}
	s.checkpoints = s.checkpoints[:len(s.checkpoints)-1]
	s.pruneTxMarkerIfShallower()
}

// RollbackTransaction pops the top checkpoint and restores the journal
// to exactly that point.
func (s *State) RollbackTransaction() {
	if len(s.checkpoints) == 0 {
		return
	}
	mark := s.checkpoints[len(s.checkpoints)-1]
	s.journal.revertTo(s, mark)
	s.checkpoints = s.checkpoints[:len(s.checkpoints)-1]
	s.pruneTxMarkerIfShallower()
}

// MarkTransactionSnapshot records the checkpoint depth at which the
// current transaction began (§4.2); used by GetStorageOriginal.
func (s *State) MarkTransactionSnapshot() {
	s.txCheckpointDepth = len(s.checkpoints) - 1
	s.created = make(map[types.Address]struct{})
	s.touched = make(map[types.Address]struct{})
}

// pruneTxMarkerIfShallower clears the transaction marker and the
// created-accounts set once the checkpoint stack has shrunk below the
// depth recorded by MarkTransactionSnapshot (§4.2).
func (s *State) pruneTxMarkerIfShallower() {
	if s.txCheckpointDepth >= len(s.checkpoints) {
		s.txCheckpointDepth = -1
		s.created = make(map[types.Address]struct{})
	}
}

// CheckpointDepth returns the current nesting depth of open checkpoints.
func (s *State) CheckpointDepth() int { return len(s.checkpoints) }

// WasCreatedInCurrentTransaction reports whether addr's account was
// created during the transaction now open — consulted by SELFDESTRUCT
// finalization to apply EIP-6780's same-transaction-creation rule.
func (s *State) WasCreatedInCurrentTransaction(addr types.Address) bool {
	return s.wasCreatedThisTx(addr)
}

// FinalizeDestructions resolves every address SELFDESTRUCT scheduled
// during the transaction now ending (§4.7 process_transaction). Pre-
// EIP-6780 (eip6780 == false), every scheduled account is destroyed
// outright. Post-6780, only accounts created earlier in the same
// transaction are destroyed; the balance movement SELFDESTRUCT already
// performed is the only lasting effect on an older account. The
// scheduled set itself is always cleared — it never outlives one
// transaction.
func (s *State) FinalizeDestructions(eip6780 bool) {
	for addr := range s.destructed {
		if !eip6780 || s.wasCreatedThisTx(addr) {
			s.DestroyAccount(addr)
		}
	}
	s.destructed = make(map[types.Address]struct{})
}
