package types

import "github.com/evmforge/evmcore/core/vm/num"

// Account is the consensus-visible account record (§3): nonce, balance
// and code. The storage root is not a stored field — it is derived on
// demand from the account's storage trie by the state package.
type Account struct {
	Nonce   uint64
	Balance *num.U256
	Code    []byte
}

// EmptyAccount returns a freshly zeroed account (nonce 0, balance 0, no
// code) — the canonical "empty" account under EIP-161.
func EmptyAccount() *Account {
	return &Account{Balance: num.Zero()}
}

// IsEmpty reports whether the account is indistinguishable from absent
// under EIP-161: zero nonce, zero balance, no code.
func (a *Account) IsEmpty() bool {
	return a.Nonce == 0 && a.Balance.IsZero() && len(a.Code) == 0
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cp := &Account{
		Nonce:   a.Nonce,
		Balance: new(num.U256).Set(a.Balance),
	}
	if a.Code != nil {
		cp.Code = append([]byte(nil), a.Code...)
	}
	return cp
}

// DelegationPrefix is the EIP-7702 EOA-delegation code prefix: an account
// whose code is exactly this prefix followed by a 20-byte address acts as
// a proxy that executes the delegate's code.
var DelegationPrefix = [3]byte{0xEF, 0x01, 0x00}

// DelegationDesignation returns the delegate address and true if code is
// shaped like an EIP-7702 delegation designator (23 bytes: 0xEF0100 ++ addr).
func DelegationDesignation(code []byte) (Address, bool) {
	if len(code) != 23 {
		return Address{}, false
	}
	if code[0] != DelegationPrefix[0] || code[1] != DelegationPrefix[1] || code[2] != DelegationPrefix[2] {
		return Address{}, false
	}
	return BytesToAddress(code[3:]), true
}
