package core

// wsv.go – C3. The world-state view: authoritative current state for
// accounts, assets, signatories, peers and balances. Generalises the
// teacher's core/account_and_balance_operations.go (AccountManager
// wrapping a mutex-guarded balance map) from a single Address->uint64
// map to the full spec.md §3 entity set.
//
// Reads are snapshot-consistent (spec.md §4.3): a single immutable
// snapshot struct is published atomically on each commit, so a reader
// that loads the pointer once sees either everything from the previous
// commit or everything from the new one, never a partial block. Writes
// only ever happen through a mutableStorage staged by the coordinator
// (spec.md §4.3 "write API is not public").

import (
	"sync/atomic"
)

type balanceKey struct {
	Account AccountID
	Asset   AssetID
}

// wsvSnapshot is immutable once published: every write path replaces it
// wholesale rather than mutating it in place.
type wsvSnapshot struct {
	accounts map[AccountID]*Account
	domains  map[string]*Domain
	assets   map[AssetID]*Asset
	balances map[balanceKey]Amount
	peers    []Peer // insertion order, deduped by PubKey
}

func newEmptySnapshot() *wsvSnapshot {
	return &wsvSnapshot{
		accounts: make(map[AccountID]*Account),
		domains:  make(map[string]*Domain),
		assets:   make(map[AssetID]*Asset),
		balances: make(map[balanceKey]Amount),
	}
}

// clone deep-copies the snapshot so a mutable storage can stage writes
// without ever touching the published, reader-visible state.
func (s *wsvSnapshot) clone() *wsvSnapshot {
	cp := &wsvSnapshot{
		accounts: make(map[AccountID]*Account, len(s.accounts)),
		domains:  make(map[string]*Domain, len(s.domains)),
		assets:   make(map[AssetID]*Asset, len(s.assets)),
		balances: make(map[balanceKey]Amount, len(s.balances)),
		peers:    append([]Peer(nil), s.peers...),
	}
	for k, v := range s.accounts {
		cp.accounts[k] = v.clone()
	}
	for k, v := range s.domains {
		d := *v
		cp.domains[k] = &d
	}
	for k, v := range s.assets {
		a := *v
		cp.assets[k] = &a
	}
	for k, v := range s.balances {
		cp.balances[k] = v.clone()
	}
	return cp
}

// WSV is the read-only handle vended by the storage coordinator.
type WSV struct {
	cur atomic.Pointer[wsvSnapshot]
}

func newWSV() *WSV {
	w := &WSV{}
	w.cur.Store(newEmptySnapshot())
	return w
}

func (w *WSV) snapshot() *wsvSnapshot { return w.cur.Load() }

func (w *WSV) publish(s *wsvSnapshot) { w.cur.Store(s) }

// GetAccount returns a copy of the account, or ok=false on miss.
func (w *WSV) GetAccount(id AccountID) (Account, bool) {
	s := w.snapshot()
	a, ok := s.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *a.clone(), true
}

// GetSignatories returns a copy of the account's signatory list.
func (w *WSV) GetSignatories(id AccountID) ([]PublicKey, bool) {
	s := w.snapshot()
	a, ok := s.accounts[id]
	if !ok {
		return nil, false
	}
	return append([]PublicKey(nil), a.Signatories...), true
}

// GetAccountAsset returns the balance of (account, asset); zero value
// (not ok) on miss, matching spec.md §4.3 "return optional/empty on miss".
func (w *WSV) GetAccountAsset(account AccountID, asset AssetID) (Amount, bool) {
	s := w.snapshot()
	bal, ok := s.balances[balanceKey{account, asset}]
	if !ok {
		return Amount{}, false
	}
	return bal.clone(), true
}

func (w *WSV) GetAsset(id AssetID) (Asset, bool) {
	s := w.snapshot()
	a, ok := s.assets[id]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

func (w *WSV) GetDomain(name string) (Domain, bool) {
	s := w.snapshot()
	d, ok := s.domains[name]
	if !ok {
		return Domain{}, false
	}
	return *d, true
}

func (w *WSV) GetPeers() []Peer {
	s := w.snapshot()
	return append([]Peer(nil), s.peers...)
}
