package core

// queryindex.go – C4. Secondary indices over committed transactions,
// maintained transactionally alongside WSV/block-store writes by the
// coordinator's commit path. Generalises the teacher's
// core/ledger.go blockIndex map[Hash]*Block posting-list idea to the
// per-account and per-(account,asset) indices spec.md §4.4 names, plus
// the descending cursor-paged walk ("pager").

import "sort"

// QueryIndex answers the account/asset transaction-history queries of
// spec.md §4.4. It never stores transactions itself — only TxRefs — and
// resolves them through a blockLookup at read time.
type QueryIndex struct {
	byAccount      map[AccountID][]TxRef
	byAccountAsset map[balanceKey][]TxRef
}

func newQueryIndex() *QueryIndex {
	return &QueryIndex{
		byAccount:      make(map[AccountID][]TxRef),
		byAccountAsset: make(map[balanceKey][]TxRef),
	}
}

// recordTransaction indexes a single applied (non-skipped) transaction.
// touched supplies the (account,asset) pairs the tx touches — callers
// pass the union across all its commands; repeated pairs are indexed once.
func (qi *QueryIndex) recordTransaction(ref TxRef, creator AccountID, touched []balanceKey) {
	qi.byAccount[creator] = append(qi.byAccount[creator], ref)
	seen := make(map[balanceKey]bool, len(touched))
	for _, k := range touched {
		if seen[k] {
			continue
		}
		seen[k] = true
		qi.byAccountAsset[k] = append(qi.byAccountAsset[k], ref)
	}
}

// clone deep-copies the index so a mutable storage can stage new
// postings without mutating the published index readers observe.
func (qi *QueryIndex) clone() *QueryIndex {
	cp := newQueryIndex()
	for k, v := range qi.byAccount {
		cp.byAccount[k] = append([]TxRef(nil), v...)
	}
	for k, v := range qi.byAccountAsset {
		cp.byAccountAsset[k] = append([]TxRef(nil), v...)
	}
	return cp
}

// blockLookup resolves a TxRef to the full transaction it names.
type blockLookup interface {
	GetBlockByHeight(height uint64) (*Block, bool)
}

// GetAccountTransactions streams the account's transactions in
// ascending (height, index) order, each at most once.
func (qi *QueryIndex) GetAccountTransactions(bl blockLookup, account AccountID) []*Transaction {
	refs := append([]TxRef(nil), qi.byAccount[account]...)
	return resolveRefs(bl, refs)
}

// GetAccountAssetTransactions streams the transactions that touch
// (account, asset) in ascending (height, index) order.
func (qi *QueryIndex) GetAccountAssetTransactions(bl blockLookup, account AccountID, asset AssetID) []*Transaction {
	refs := append([]TxRef(nil), qi.byAccountAsset[balanceKey{account, asset}]...)
	return resolveRefs(bl, refs)
}

// GetAccountAssetsTransactionsWithPager walks, in strictly descending
// (height, index) order, the transactions touching (account, z) for any
// z in assetIDs. cursorTxHash zero starts from the newest match;
// otherwise the walk starts strictly after the tx with that hash. If
// cursorTxHash isn't found among matches the result is empty.
// limit == 0 yields an empty result.
func (qi *QueryIndex) GetAccountAssetsTransactionsWithPager(
	bl blockLookup, account AccountID, assetIDs []AssetID, cursorTxHash Hash, limit int,
) []*Transaction {
	if limit == 0 {
		return nil
	}

	merged := make(map[TxRef]struct{})
	for _, asset := range assetIDs {
		for _, ref := range qi.byAccountAsset[balanceKey{account, asset}] {
			merged[ref] = struct{}{}
		}
	}
	refs := make([]TxRef, 0, len(merged))
	for ref := range merged {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Height != refs[j].Height {
			return refs[i].Height > refs[j].Height
		}
		return refs[i].Index > refs[j].Index
	})

	start := 0
	if !cursorTxHash.IsZero() {
		found := -1
		for i, r := range refs {
			if r.TxHash == cursorTxHash {
				found = i
				break
			}
		}
		if found < 0 {
			return nil
		}
		start = found + 1
	}

	end := start + limit
	if end > len(refs) {
		end = len(refs)
	}
	if start >= end {
		return nil
	}
	return resolveRefs(bl, refs[start:end])
}

func resolveRefs(bl blockLookup, refs []TxRef) []*Transaction {
	out := make([]*Transaction, 0, len(refs))
	for _, ref := range refs {
		blk, ok := bl.GetBlockByHeight(ref.Height)
		if !ok || int(ref.Index) >= len(blk.Transactions) {
			continue
		}
		out = append(out, blk.Transactions[ref.Index])
	}
	return out
}
