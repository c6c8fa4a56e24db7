package core

import "testing"

func mustCreateDomainAccount(t *testing.T, snap *wsvSnapshot, domain, account string, pub PublicKey) {
	t.Helper()
	if err := execCreateDomain(snap, CreateDomain{Name: domain}); err != nil {
		t.Fatalf("create domain: %v", err)
	}
	if err := execCreateAccount(snap, CreateAccount{Name: account, Domain: domain, PublicKey: pub}); err != nil {
		t.Fatalf("create account: %v", err)
	}
}

func TestExecCreateAccount_DuplicateRejected(t *testing.T) {
	snap := newEmptySnapshot()
	mustCreateDomainAccount(t, snap, "ru", "user1", PublicKey{})

	err := execCreateAccount(snap, CreateAccount{Name: "user1", Domain: "ru"})
	ce, ok := AsCmdError(err)
	if !ok || ce.Kind != CmdDuplicate {
		t.Fatalf("expected CmdDuplicate, got %v", err)
	}
}

func TestExecCreateAccount_MissingDomain(t *testing.T) {
	snap := newEmptySnapshot()
	err := execCreateAccount(snap, CreateAccount{Name: "user1", Domain: "ru"})
	ce, ok := AsCmdError(err)
	if !ok || ce.Kind != CmdMissing {
		t.Fatalf("expected CmdMissing, got %v", err)
	}
}

func TestTransferAsset(t *testing.T) {
	snap := newEmptySnapshot()
	mustCreateDomainAccount(t, snap, "ru", "user1", PublicKey{})
	if err := execCreateAccount(snap, CreateAccount{Name: "user2", Domain: "ru"}); err != nil {
		t.Fatalf("create user2: %v", err)
	}
	if err := execCreateAsset(snap, CreateAsset{Name: "RUB", Domain: "ru", Precision: 2}); err != nil {
		t.Fatalf("create asset: %v", err)
	}

	user1 := NewAccountID("user1", "ru")
	user2 := NewAccountID("user2", "ru")
	asset := NewAssetID("RUB", "ru")

	if _, err := execAddAssetQuantity(snap, AddAssetQuantity{AccountID: user1, AssetID: asset, Amount: NewAmount(15000, 2)}); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := execTransferAsset(snap, TransferAsset{Src: user1, Dest: user2, AssetID: asset, Amount: NewAmount(10000, 2)}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	srcBal := snap.balances[balanceKey{user1, asset}]
	dstBal := snap.balances[balanceKey{user2, asset}]
	if srcBal.Value.Int64() != 5000 {
		t.Fatalf("expected src balance 5000, got %s", srcBal.Value)
	}
	if dstBal.Value.Int64() != 10000 {
		t.Fatalf("expected dst balance 10000, got %s", dstBal.Value)
	}
}

func TestTransferAsset_InsufficientFunds(t *testing.T) {
	snap := newEmptySnapshot()
	mustCreateDomainAccount(t, snap, "ru", "user1", PublicKey{})
	if err := execCreateAccount(snap, CreateAccount{Name: "user2", Domain: "ru"}); err != nil {
		t.Fatalf("create user2: %v", err)
	}
	if err := execCreateAsset(snap, CreateAsset{Name: "RUB", Domain: "ru", Precision: 2}); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	user1 := NewAccountID("user1", "ru")
	user2 := NewAccountID("user2", "ru")
	asset := NewAssetID("RUB", "ru")

	_, err := execTransferAsset(snap, TransferAsset{Src: user1, Dest: user2, AssetID: asset, Amount: NewAmount(100, 2)})
	ce, ok := AsCmdError(err)
	if !ok || ce.Kind != CmdInsufficientFunds {
		t.Fatalf("expected CmdInsufficientFunds, got %v", err)
	}
}

func TestSignatoryQuorum(t *testing.T) {
	snap := newEmptySnapshot()
	var k1, k2 PublicKey
	k1[0], k2[0] = 1, 2
	mustCreateDomainAccount(t, snap, "ru", "user2", k1)
	user2 := NewAccountID("user2", "ru")

	if err := execAddSignatory(snap, AddSignatory{AccountID: user2, PublicKey: k2}); err != nil {
		t.Fatalf("add signatory: %v", err)
	}
	if err := execSetQuorum(snap, SetQuorum{AccountID: user2, Quorum: 2}); err != nil {
		t.Fatalf("set quorum: %v", err)
	}

	err := execRemoveSignatory(snap, RemoveSignatory{AccountID: user2, PublicKey: k2})
	ce, ok := AsCmdError(err)
	if !ok || ce.Kind != CmdQuorumViolation {
		t.Fatalf("expected CmdQuorumViolation, got %v", err)
	}

	if err := execSetQuorum(snap, SetQuorum{AccountID: user2, Quorum: 1}); err != nil {
		t.Fatalf("lower quorum: %v", err)
	}
	if err := execRemoveSignatory(snap, RemoveSignatory{AccountID: user2, PublicKey: k2}); err != nil {
		t.Fatalf("remove signatory after lowering quorum: %v", err)
	}
}

// TestTxTouchedKeys_CreateCrossProduct covers spec.md §4.4's third touch
// clause: a tx creating account A and asset Z touches (A,Z) even with no
// add_asset_quantity/transfer_asset in the same tx.
func TestTxTouchedKeys_CreateCrossProduct(t *testing.T) {
	alice := NewAccountID("alice", "ru")
	bob := NewAccountID("bob", "ru")
	rub := NewAssetID("RUB", "ru")
	usd := NewAssetID("USD", "ru")

	tx := &Transaction{Commands: []Command{
		CreateDomain{Name: "ru"},
		CreateAccount{Name: "alice", Domain: "ru"},
		CreateAccount{Name: "bob", Domain: "ru"},
		CreateAsset{Name: "RUB", Domain: "ru", Precision: 2},
		CreateAsset{Name: "USD", Domain: "ru", Precision: 2},
	}}

	got := txTouchedKeys(tx, nil)
	want := map[balanceKey]bool{
		{alice, rub}: true, {alice, usd}: true,
		{bob, rub}: true, {bob, usd}: true,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d touched keys, got %d: %v", len(want), len(got), got)
	}
	for _, k := range got {
		if !want[k] {
			t.Fatalf("unexpected touched key %+v", k)
		}
	}
}

// TestTxTouchedKeys_NoCreatesPassesMovementThrough covers a tx with no
// create-account/create-asset commands: the movement-derived touches pass
// through unchanged and no cross product is added.
func TestTxTouchedKeys_NoCreatesPassesMovementThrough(t *testing.T) {
	alice := NewAccountID("alice", "ru")
	rub := NewAssetID("RUB", "ru")
	tx := &Transaction{Commands: []Command{
		AddAssetQuantity{AccountID: alice, AssetID: rub, Amount: NewAmount(100, 2)},
	}}
	movement := []balanceKey{{alice, rub}}
	got := txTouchedKeys(tx, movement)
	if len(got) != 1 || got[0] != (balanceKey{alice, rub}) {
		t.Fatalf("expected movement touches passed through unchanged, got %v", got)
	}
}

func TestAddAssetQuantity_PrecisionMismatch(t *testing.T) {
	snap := newEmptySnapshot()
	mustCreateDomainAccount(t, snap, "ru", "user1", PublicKey{})
	if err := execCreateAsset(snap, CreateAsset{Name: "RUB", Domain: "ru", Precision: 2}); err != nil {
		t.Fatalf("create asset: %v", err)
	}
	user1 := NewAccountID("user1", "ru")
	asset := NewAssetID("RUB", "ru")

	_, err := execAddAssetQuantity(snap, AddAssetQuantity{AccountID: user1, AssetID: asset, Amount: NewAmount(100, 3)})
	ce, ok := AsCmdError(err)
	if !ok || ce.Kind != CmdPrecisionMismatch {
		t.Fatalf("expected CmdPrecisionMismatch, got %v", err)
	}
}
