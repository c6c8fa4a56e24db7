package core

// mutablestorage.go – C6. A transactional staging object spanning WSV +
// block store + query index for one candidate block. Grounded on the
// teacher's core/ledger.go Call(), which clones ledger state into a
// transient memState, executes against the clone, and discards it —
// the same copy/execute/discard-or-publish shape applied here to an
// entire block instead of one contract call.

import (
	"github.com/sirupsen/logrus"
)

// Validator gates the whole commit (spec.md §4.5): if it returns false
// the entire staging is discarded, regardless of how many of the
// block's transactions individually succeeded.
type Validator func(block *Block, view *WSVView, topHash Hash) bool

// WSVView is the read-only handle a Validator (or any other read path)
// gets against a not-yet-published snapshot.
type WSVView struct{ snap *wsvSnapshot }

func (v *WSVView) GetAccount(id AccountID) (Account, bool) {
	a, ok := v.snap.accounts[id]
	if !ok {
		return Account{}, false
	}
	return *a.clone(), true
}

func (v *WSVView) GetAccountAsset(account AccountID, asset AssetID) (Amount, bool) {
	bal, ok := v.snap.balances[balanceKey{account, asset}]
	if !ok {
		return Amount{}, false
	}
	return bal.clone(), true
}

func (v *WSVView) GetAsset(id AssetID) (Asset, bool) {
	a, ok := v.snap.assets[id]
	if !ok {
		return Asset{}, false
	}
	return *a, true
}

func (v *WSVView) GetDomain(name string) (Domain, bool) {
	d, ok := v.snap.domains[name]
	if !ok {
		return Domain{}, false
	}
	return *d, true
}

func (v *WSVView) GetPeers() []Peer { return append([]Peer(nil), v.snap.peers...) }

// TxOutcome records whether a transaction inside a candidate block
// applied or was skipped, for callers that want a post-mortem.
type TxOutcome struct {
	Tx      *Transaction
	Applied bool
	Err     error
}

// MutableStorage is the exclusive, short-lived staging object described
// in spec.md §4.6. Exactly one may be open at a time; see coordinator.go.
type MutableStorage struct {
	coord    *Coordinator
	staged   *wsvSnapshot
	index    *QueryIndex
	block    *Block
	outcomes []TxOutcome
	done     bool
}

// Apply runs the full apply algorithm of spec.md §4.6:
//  1. checks chain linkage against the current top
//  2. runs each transaction's commands sequentially against a per-tx
//     snapshot, reverting and skipping on any command error
//  3. calls validator(block, read_view, top_hash); false discards
//     everything and Apply returns false
//  4. on success stages WSV/index/block-append in memory and returns true
func (ms *MutableStorage) Apply(block *Block, validator Validator) (bool, error) {
	if ms.done {
		return false, ErrBusy
	}

	top, hasTop := ms.coord.blocks.Top()
	var topHash Hash
	if hasTop {
		topHash = top.Hash
		if block.Header.Height != top.Header.Height+1 || block.Header.PrevHash != top.Hash {
			return false, ErrChainBreak
		}
	} else if block.Header.Height != 1 || !block.Header.PrevHash.IsZero() {
		return false, ErrChainBreak
	}

	staged := ms.coord.wsv.snapshot().clone()
	index := ms.coord.index.Load().clone()
	outcomes := make([]TxOutcome, 0, len(block.Transactions))

	for i, tx := range block.Transactions {
		trial := staged.clone()
		var touched []balanceKey
		var failErr error
		for _, cmd := range tx.Commands {
			t, err := executeCommand(trial, cmd)
			if err != nil {
				failErr = err
				break
			}
			touched = append(touched, t...)
		}
		if failErr != nil {
			ms.coord.logger.WithFields(logrus.Fields{
				"tx":    tx.Hash.Hex(),
				"error": failErr,
			}).Warn("transaction skipped")
			outcomes = append(outcomes, TxOutcome{Tx: tx, Applied: false, Err: failErr})
			continue
		}
		staged = trial
		ref := TxRef{Height: block.Header.Height, Index: uint32(i), TxHash: tx.Hash}
		index.recordTransaction(ref, tx.Header.CreatorAccountID, txTouchedKeys(tx, touched))
		outcomes = append(outcomes, TxOutcome{Tx: tx, Applied: true})
	}

	txHashes := make([]Hash, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		txHashes = append(txHashes, tx.Hash)
	}
	block.Header.MerkleRoot = computeMerkleRoot(txHashes)
	block.Header.TxsNumber = uint32(len(block.Transactions))
	blockHash, err := ms.coord.hasher.HashBlock(block)
	if err != nil {
		return false, err
	}
	block.Hash = blockHash

	view := &WSVView{snap: staged}
	if validator != nil && !validator(block, view, topHash) {
		return false, ErrValidatorRejected
	}

	ms.staged = staged
	ms.index = index
	ms.block = block
	ms.outcomes = outcomes
	return true, nil
}

// Outcomes reports the per-transaction result of the last Apply call.
func (ms *MutableStorage) Outcomes() []TxOutcome { return ms.outcomes }

// Discard releases the mutable storage without publishing anything —
// equivalent to spec.md §4.6 "dropping a mutable storage without commit".
func (ms *MutableStorage) Discard() {
	if ms.done {
		return
	}
	ms.done = true
	ms.coord.releaseMutableStorage()
}
