package state

import (
	"github.com/evmforge/evmcore/core/types"
	"github.com/evmforge/evmcore/core/vm/num"
)

// journalEntry is one revertible state change. The journal is an
// append-only log with per-checkpoint markers (§9 Design Notes: "prefer
// a single append-only journal... rather than deep-copying the trie" —
// the teacher's core/state/journal.go already does this; evmcore keeps
// that shape instead of the heavier full-trie-copy snapshot the spec
// text describes, since the observable commit/rollback/original
// contract is identical either way).
type journalEntry interface {
	revert(s *State)
}

type journal struct {
	entries []journalEntry
}

func newJournal() *journal { return &journal{} }

func (j *journal) append(e journalEntry) { j.entries = append(j.entries, e) }

func (j *journal) length() int { return len(j.entries) }

// revertTo undoes every entry appended since the journal had the given
// length, in reverse order.
func (j *journal) revertTo(s *State, length int) {
	for i := len(j.entries) - 1; i >= length; i-- {
		j.entries[i].revert(s)
	}
	j.entries = j.entries[:length]
}

type createAccountChange struct {
	addr types.Address
	prev *types.Account // nil if absent before
}

func (c createAccountChange) revert(s *State) {
	if c.prev == nil {
		delete(s.accounts, c.addr)
	} else {
		s.accounts[c.addr] = c.prev
	}
}

type destroyAccountChange struct {
	addr    types.Address
	prev    *types.Account
	storage map[types.Hash]*num.U256
}

func (c destroyAccountChange) revert(s *State) {
	s.accounts[c.addr] = c.prev
	if c.storage != nil {
		s.storage[c.addr] = c.storage
	}
}

type balanceChange struct {
	addr types.Address
	prev *num.U256
}

func (c balanceChange) revert(s *State) {
	if a := s.accounts[c.addr]; a != nil {
		a.Balance = c.prev
	}
}

type nonceChange struct {
	addr types.Address
	prev uint64
}

func (c nonceChange) revert(s *State) {
	if a := s.accounts[c.addr]; a != nil {
		a.Nonce = c.prev
	}
}

type codeChange struct {
	addr types.Address
	prev []byte
}

func (c codeChange) revert(s *State) {
	if a := s.accounts[c.addr]; a != nil {
		a.Code = c.prev
	}
}

type storageChange struct {
	addr       types.Address
	key        types.Hash
	prev       *num.U256 // nil means "was absent"
	prevExists bool
}

func (c storageChange) revert(s *State) {
	slots := s.storage[c.addr]
	if slots == nil {
		return
	}
	if c.prevExists {
		slots[c.key] = c.prev
	} else {
		delete(slots, c.key)
	}
}

type transientStorageChange struct {
	addr       types.Address
	key        types.Hash
	prev       *num.U256
	prevExists bool
}

func (c transientStorageChange) revert(s *State) {
	slots := s.transient[c.addr]
	if slots == nil {
		return
	}
	if c.prevExists {
		slots[c.key] = c.prev
	} else {
		delete(slots, c.key)
	}
}

type touchChange struct {
	addr      types.Address
	wasTouched bool
}

func (c touchChange) revert(s *State) {
	if !c.wasTouched {
		delete(s.touched, c.addr)
	}
}

type createdAccountMarkChange struct {
	addr        types.Address
	wasMarked   bool
}

func (c createdAccountMarkChange) revert(s *State) {
	if !c.wasMarked {
		delete(s.created, c.addr)
	}
}

type refundChange struct {
	prev *num.U256
}

func (c refundChange) revert(s *State) {
	s.refund = c.prev
}

type logChange struct {
	addr types.Address // unused, kept for symmetry/debuggability
}

func (c logChange) revert(s *State) {
	s.logs = s.logs[:len(s.logs)-1]
}

type destructChange struct {
	addr             types.Address
	wasScheduled bool
}

func (c destructChange) revert(s *State) {
	if !c.wasScheduled {
		delete(s.destructed, c.addr)
	}
}
