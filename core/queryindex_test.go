package core

import "testing"

// fakeBlockLookup resolves TxRefs against a fixed in-memory set of blocks,
// standing in for a BlockStore in isolation.
type fakeBlockLookup struct {
	byHeight map[uint64]*Block
}

func (f fakeBlockLookup) GetBlockByHeight(h uint64) (*Block, bool) {
	b, ok := f.byHeight[h]
	return b, ok
}

func txWithHash(b byte) *Transaction {
	return &Transaction{Hash: Hash{b}}
}

// TestQueryIndex_Pager reproduces the committed-tx walk: T2..T6 touch
// alice/irh except T4, which touches a different asset entirely.
func TestQueryIndex_Pager(t *testing.T) {
	alice := NewAccountID("alice", "test")
	irh := NewAssetID("irh", "test")
	other := NewAssetID("xyz", "test")

	t2, t3, t4, t5, t6 := txWithHash(2), txWithHash(3), txWithHash(4), txWithHash(5), txWithHash(6)
	blocks := map[uint64]*Block{
		2: {Header: BlockHeader{Height: 2}, Transactions: []*Transaction{t2}},
		3: {Header: BlockHeader{Height: 3}, Transactions: []*Transaction{t3}},
		4: {Header: BlockHeader{Height: 4}, Transactions: []*Transaction{t4}},
		5: {Header: BlockHeader{Height: 5}, Transactions: []*Transaction{t5}},
		6: {Header: BlockHeader{Height: 6}, Transactions: []*Transaction{t6}},
	}
	bl := fakeBlockLookup{byHeight: blocks}

	qi := newQueryIndex()
	qi.recordTransaction(TxRef{Height: 2, Index: 0, TxHash: t2.Hash}, alice, []balanceKey{{alice, irh}})
	qi.recordTransaction(TxRef{Height: 3, Index: 0, TxHash: t3.Hash}, alice, []balanceKey{{alice, irh}})
	qi.recordTransaction(TxRef{Height: 4, Index: 0, TxHash: t4.Hash}, alice, []balanceKey{{alice, other}})
	qi.recordTransaction(TxRef{Height: 5, Index: 0, TxHash: t5.Hash}, alice, []balanceKey{{alice, irh}})
	qi.recordTransaction(TxRef{Height: 6, Index: 0, TxHash: t6.Hash}, alice, []balanceKey{{alice, irh}})

	assets := []AssetID{irh}

	assertHashes := func(t *testing.T, got []*Transaction, want ...byte) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("expected %d txs, got %d (%v)", len(want), len(got), got)
		}
		for i, w := range want {
			if got[i].Hash != (Hash{w}) {
				t.Fatalf("at %d: expected hash %x, got %x", i, w, got[i].Hash)
			}
		}
	}

	got := qi.GetAccountAssetsTransactionsWithPager(bl, alice, assets, Hash{}, 1)
	assertHashes(t, got, 6)

	got = qi.GetAccountAssetsTransactionsWithPager(bl, alice, assets, t6.Hash, 100)
	assertHashes(t, got, 5, 3, 2)

	got = qi.GetAccountAssetsTransactionsWithPager(bl, alice, assets, Hash{}, 0)
	if len(got) != 0 {
		t.Fatalf("expected empty result for limit 0, got %v", got)
	}

	got = qi.GetAccountAssetsTransactionsWithPager(bl, alice, assets, Hash{}, 100)
	assertHashes(t, got, 6, 5, 3, 2)
}

func TestQueryIndex_PagerUnknownCursorIsEmpty(t *testing.T) {
	alice := NewAccountID("alice", "test")
	irh := NewAssetID("irh", "test")
	qi := newQueryIndex()
	bl := fakeBlockLookup{byHeight: map[uint64]*Block{}}

	got := qi.GetAccountAssetsTransactionsWithPager(bl, alice, []AssetID{irh}, Hash{0xFF}, 10)
	if got != nil {
		t.Fatalf("expected nil for unresolvable cursor, got %v", got)
	}
}

func TestQueryIndex_AscendingOrder(t *testing.T) {
	alice := NewAccountID("alice", "test")
	irh := NewAssetID("irh", "test")
	t2, t3 := txWithHash(2), txWithHash(3)
	bl := fakeBlockLookup{byHeight: map[uint64]*Block{
		2: {Header: BlockHeader{Height: 2}, Transactions: []*Transaction{t2}},
		3: {Header: BlockHeader{Height: 3}, Transactions: []*Transaction{t3}},
	}}
	qi := newQueryIndex()
	qi.recordTransaction(TxRef{Height: 2, Index: 0, TxHash: t2.Hash}, alice, []balanceKey{{alice, irh}})
	qi.recordTransaction(TxRef{Height: 3, Index: 0, TxHash: t3.Hash}, alice, []balanceKey{{alice, irh}})

	got := qi.GetAccountAssetTransactions(bl, alice, irh)
	if len(got) != 2 || got[0].Hash != t2.Hash || got[1].Hash != t3.Hash {
		t.Fatalf("expected ascending [t2,t3], got %v", got)
	}
}
