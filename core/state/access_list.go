package state

import "github.com/evmforge/evmcore/core/types"

// accessList tracks which addresses and storage slots have been "warmed"
// during the current transaction (EIP-2929/2930, §5).
type accessList struct {
	addresses map[types.Address]int
	slots     []map[types.Hash]struct{}
}

func newAccessList() *accessList {
	return &accessList{addresses: make(map[types.Address]int)}
}

func (al *accessList) addAddress(addr types.Address) (alreadyPresent bool) {
	if _, ok := al.addresses[addr]; ok {
		return true
	}
	al.addresses[addr] = -1
	return false
}

func (al *accessList) addSlot(addr types.Address, slot types.Hash) (addrPresent, slotPresent bool) {
	idx, addrPresent := al.addresses[addr]
	if addrPresent && idx != -1 {
		if _, ok := al.slots[idx][slot]; ok {
			return true, true
		}
		al.slots[idx][slot] = struct{}{}
		return true, false
	}
	al.addresses[addr] = len(al.slots)
	al.slots = append(al.slots, map[types.Hash]struct{}{slot: {}})
	return addrPresent, false
}

func (al *accessList) containsAddress(addr types.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

func (al *accessList) containsSlot(addr types.Address, slot types.Hash) (addrOK, slotOK bool) {
	idx, ok := al.addresses[addr]
	if !ok {
		return false, false
	}
	if idx == -1 {
		return true, false
	}
	_, slotOK = al.slots[idx][slot]
	return true, slotOK
}

func (al *accessList) deleteAddress(addr types.Address) {
	delete(al.addresses, addr)
}

func (al *accessList) deleteSlot(addr types.Address, slot types.Hash) {
	idx, ok := al.addresses[addr]
	if !ok || idx == -1 {
		return
	}
	delete(al.slots[idx], slot)
}

type accessListAddAccountChange struct {
	addr types.Address
}

func (c accessListAddAccountChange) revert(s *State) {
	s.accessList.deleteAddress(c.addr)
}

type accessListAddSlotChange struct {
	addr types.Address
	slot types.Hash
}

func (c accessListAddSlotChange) revert(s *State) {
	s.accessList.deleteSlot(c.addr, c.slot)
}

// AddAddressToAccessList warms addr, journaling the change. Returns true
// if it was already warm.
func (s *State) AddAddressToAccessList(addr types.Address) bool {
	if s.accessList.addAddress(addr) {
		return true
	}
	s.journal.append(accessListAddAccountChange{addr: addr})
	return false
}

// AddSlotToAccessList warms (addr, slot), journaling the change.
func (s *State) AddSlotToAccessList(addr types.Address, slot types.Hash) (addrWasWarm, slotWasWarm bool) {
	addrWasWarm, slotWasWarm = s.accessList.addSlot(addr, slot)
	if !addrWasWarm {
		s.journal.append(accessListAddAccountChange{addr: addr})
	}
	if !slotWasWarm {
		s.journal.append(accessListAddSlotChange{addr: addr, slot: slot})
	}
	return addrWasWarm, slotWasWarm
}

// AddressInAccessList reports whether addr is warm.
func (s *State) AddressInAccessList(addr types.Address) bool {
	return s.accessList.containsAddress(addr)
}

// SlotInAccessList reports whether (addr, slot) is warm.
func (s *State) SlotInAccessList(addr types.Address, slot types.Hash) (addrOK, slotOK bool) {
	return s.accessList.containsSlot(addr, slot)
}

// PrepareAccessList resets the access list for a new transaction and
// pre-warms the sender, recipient (or the about-to-be-created contract
// address), precompiles, and the transaction's declared access list
// (EIP-2929/2930 "PrepareAccessList", §5).
func (s *State) PrepareAccessList(sender types.Address, dst *types.Address, precompiles []types.Address, list types.AccessList) {
	s.accessList = newAccessList()
	s.accessList.addAddress(sender)
	if dst != nil {
		s.accessList.addAddress(*dst)
	}
	for _, p := range precompiles {
		s.accessList.addAddress(p)
	}
	for _, el := range list {
		s.accessList.addAddress(el.Address)
		for _, key := range el.StorageKeys {
			s.accessList.addSlot(el.Address, key)
		}
	}
}
