package core

// executor.go – C5. Pure command functions mapping (command, staged
// snapshot) -> ok/err, mutating the snapshot in place. Re-expressed from
// the teacher's runtime type-cast dispatch as an exhaustive type switch
// over the closed Command variant set (spec.md §9 Design Notes), in the
// precondition-checking style of core/account_and_balance_operations.go
// Transfer/Mint/Burn.
//
// executeCommand is called only from mutablestorage.go's Apply and
// coordinator.go's rebuildFromBlockStore, always against a private,
// not-yet-published snapshot clone, so the mutations below never touch
// state visible to readers.

// executeCommand applies cmd to snap, returning the (account, asset)
// pairs it touched for the query index (spec.md §4.4), or a *CmdError
// naming why it was rejected.
func executeCommand(snap *wsvSnapshot, cmd Command) ([]balanceKey, error) {
	switch c := cmd.(type) {
	case CreateDomain:
		return nil, execCreateDomain(snap, c)
	case CreateAccount:
		return nil, execCreateAccount(snap, c)
	case CreateAsset:
		return nil, execCreateAsset(snap, c)
	case AddAssetQuantity:
		return execAddAssetQuantity(snap, c)
	case TransferAsset:
		return execTransferAsset(snap, c)
	case AddSignatory:
		return nil, execAddSignatory(snap, c)
	case RemoveSignatory:
		return nil, execRemoveSignatory(snap, c)
	case SetQuorum:
		return nil, execSetQuorum(snap, c)
	case AddPeer:
		return nil, execAddPeer(snap, c)
	default:
		return nil, newCmdError(CmdPermissionDenied, "unsupported command %T", cmd)
	}
}

func execCreateDomain(snap *wsvSnapshot, c CreateDomain) error {
	if _, ok := snap.domains[c.Name]; ok {
		return newCmdError(CmdDuplicate, "domain %q exists", c.Name)
	}
	snap.domains[c.Name] = &Domain{Name: c.Name}
	return nil
}

func execCreateAccount(snap *wsvSnapshot, c CreateAccount) error {
	if _, ok := snap.domains[c.Domain]; !ok {
		return newCmdError(CmdMissing, "domain %q missing", c.Domain)
	}
	id := NewAccountID(c.Name, c.Domain)
	if _, ok := snap.accounts[id]; ok {
		return newCmdError(CmdDuplicate, "account %q exists", id)
	}
	var sigs []PublicKey
	if c.PublicKey != (PublicKey{}) {
		sigs = []PublicKey{c.PublicKey}
	}
	snap.accounts[id] = &Account{
		ID:          id,
		Name:        c.Name,
		Domain:      c.Domain,
		Quorum:      1,
		Signatories: sigs,
	}
	return nil
}

func execCreateAsset(snap *wsvSnapshot, c CreateAsset) error {
	if _, ok := snap.domains[c.Domain]; !ok {
		return newCmdError(CmdMissing, "domain %q missing", c.Domain)
	}
	id := NewAssetID(c.Name, c.Domain)
	if _, ok := snap.assets[id]; ok {
		return newCmdError(CmdDuplicate, "asset %q exists", id)
	}
	// spec.md §4.5's "precision > 255" rejection is enforced by the type:
	// CreateAsset.Precision is a uint8, so it can never exceed 255.
	snap.assets[id] = &Asset{ID: id, Name: c.Name, Domain: c.Domain, Precision: c.Precision}
	return nil
}

func execAddAssetQuantity(snap *wsvSnapshot, c AddAssetQuantity) ([]balanceKey, error) {
	acc, ok := snap.accounts[c.AccountID]
	if !ok {
		return nil, newCmdError(CmdMissing, "account %q missing", c.AccountID)
	}
	asset, ok := snap.assets[c.AssetID]
	if !ok {
		return nil, newCmdError(CmdMissing, "asset %q missing", c.AssetID)
	}
	if c.Amount.Precision != asset.Precision {
		return nil, newCmdError(CmdPrecisionMismatch, "asset %q precision %d, amount precision %d",
			c.AssetID, asset.Precision, c.Amount.Precision)
	}
	if c.Amount.Sign() <= 0 {
		return nil, newCmdError(CmdBadAmount, "amount must be positive")
	}
	key := balanceKey{acc.ID, asset.ID}
	snap.balances[key] = snap.balances[key].add(c.Amount)
	return []balanceKey{key}, nil
}

func execTransferAsset(snap *wsvSnapshot, c TransferAsset) ([]balanceKey, error) {
	if c.Src == c.Dest {
		return nil, newCmdError(CmdBadAmount, "src and dest accounts must differ")
	}
	src, ok := snap.accounts[c.Src]
	if !ok {
		return nil, newCmdError(CmdMissing, "account %q missing", c.Src)
	}
	dest, ok := snap.accounts[c.Dest]
	if !ok {
		return nil, newCmdError(CmdMissing, "account %q missing", c.Dest)
	}
	asset, ok := snap.assets[c.AssetID]
	if !ok {
		return nil, newCmdError(CmdMissing, "asset %q missing", c.AssetID)
	}
	if c.Amount.Precision != asset.Precision {
		return nil, newCmdError(CmdPrecisionMismatch, "asset %q precision %d, amount precision %d",
			c.AssetID, asset.Precision, c.Amount.Precision)
	}
	if c.Amount.Sign() <= 0 {
		return nil, newCmdError(CmdBadAmount, "amount must be positive")
	}
	srcKey := balanceKey{src.ID, asset.ID}
	destKey := balanceKey{dest.ID, asset.ID}
	srcBal := snap.balances[srcKey]
	if srcBal.Value == nil || srcBal.lessThan(c.Amount) {
		return nil, newCmdError(CmdInsufficientFunds, "account %q has insufficient %q balance", c.Src, c.AssetID)
	}
	snap.balances[srcKey] = srcBal.sub(c.Amount)
	snap.balances[destKey] = snap.balances[destKey].add(c.Amount)
	return []balanceKey{srcKey, destKey}, nil
}

func execAddSignatory(snap *wsvSnapshot, c AddSignatory) error {
	acc, ok := snap.accounts[c.AccountID]
	if !ok {
		return newCmdError(CmdMissing, "account %q missing", c.AccountID)
	}
	if acc.hasSignatory(c.PublicKey) {
		return newCmdError(CmdDuplicate, "signatory already present")
	}
	acc.Signatories = append(acc.Signatories, c.PublicKey)
	return nil
}

func execRemoveSignatory(snap *wsvSnapshot, c RemoveSignatory) error {
	acc, ok := snap.accounts[c.AccountID]
	if !ok {
		return newCmdError(CmdMissing, "account %q missing", c.AccountID)
	}
	idx := -1
	for i, s := range acc.Signatories {
		if s == c.PublicKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newCmdError(CmdMissing, "signatory not present")
	}
	if uint32(len(acc.Signatories)-1) < acc.Quorum {
		return newCmdError(CmdQuorumViolation, "removing signatory would drop below quorum %d", acc.Quorum)
	}
	acc.Signatories = append(acc.Signatories[:idx], acc.Signatories[idx+1:]...)
	return nil
}

func execSetQuorum(snap *wsvSnapshot, c SetQuorum) error {
	acc, ok := snap.accounts[c.AccountID]
	if !ok {
		return newCmdError(CmdMissing, "account %q missing", c.AccountID)
	}
	if c.Quorum < 1 || c.Quorum > uint32(len(acc.Signatories)) {
		return newCmdError(CmdQuorumViolation, "quorum %d invalid for %d signatories", c.Quorum, len(acc.Signatories))
	}
	acc.Quorum = c.Quorum
	return nil
}

func execAddPeer(snap *wsvSnapshot, c AddPeer) error {
	for _, p := range snap.peers {
		if p.PubKey == c.PublicKey {
			return newCmdError(CmdDuplicate, "peer already present")
		}
	}
	snap.peers = append(snap.peers, Peer{PubKey: c.PublicKey, Address: c.Address})
	return nil
}

// txTouchedKeys computes the full (account, asset) touch set for a
// successfully-applied transaction (spec.md §4.4): movementTouches is the
// union of the per-command keys executeCommand already returned for
// add_asset_quantity/transfer_asset, and this adds the cross product of
// every account created and every asset created within the same tx — "an
// asset-creating command naming Z and an account-creating command naming
// A" also counts as touching (A,Z). Only called once a tx's commands have
// all succeeded, so every CreateAccount/CreateAsset scanned here is one
// that actually landed.
func txTouchedKeys(tx *Transaction, movementTouches []balanceKey) []balanceKey {
	var createdAccounts []AccountID
	var createdAssets []AssetID
	for _, cmd := range tx.Commands {
		switch c := cmd.(type) {
		case CreateAccount:
			createdAccounts = append(createdAccounts, NewAccountID(c.Name, c.Domain))
		case CreateAsset:
			createdAssets = append(createdAssets, NewAssetID(c.Name, c.Domain))
		}
	}
	if len(createdAccounts) == 0 || len(createdAssets) == 0 {
		return movementTouches
	}
	touched := append([]balanceKey(nil), movementTouches...)
	for _, a := range createdAccounts {
		for _, z := range createdAssets {
			touched = append(touched, balanceKey{a, z})
		}
	}
	return touched
}
