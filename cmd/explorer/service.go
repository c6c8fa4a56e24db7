package main

import (
	"fmt"

	"ledgerd/core"
)

// LedgerService wraps the read-only queries a block/tx/account explorer
// needs, fronting a storage coordinator the way the teacher's
// LedgerService fronted a *core.Ledger.
type LedgerService struct {
	coord *core.Coordinator
}

func NewLedgerService(coord *core.Coordinator) (*LedgerService, error) {
	if coord == nil {
		return nil, fmt.Errorf("coordinator not initialised")
	}
	return &LedgerService{coord: coord}, nil
}

type blockSummary struct {
	Height uint64 `json:"height"`
	Hash   string `json:"hash"`
	Txs    int    `json:"txs"`
}

// LatestBlocks returns summaries for the most recent blocks, newest first.
func (s *LedgerService) LatestBlocks(count int) []blockSummary {
	blocks := s.coord.BlockQuery().TopBlocks(count)
	out := make([]blockSummary, 0, len(blocks))
	for _, blk := range blocks {
		out = append(out, blockSummary{
			Height: blk.Header.Height,
			Hash:   blk.Hash.Hex(),
			Txs:    len(blk.Transactions),
		})
	}
	return out
}

// BlockByHeight returns the block at the given height.
func (s *LedgerService) BlockByHeight(h uint64) (*core.Block, error) {
	blk, ok := s.coord.BlockQuery().GetBlockByHeight(h)
	if !ok {
		return nil, fmt.Errorf("block %d not found", h)
	}
	return blk, nil
}

// TxByHash searches committed blocks for a transaction by hash. The
// block store has no dedicated transaction index of its own (spec.md
// §4.4 indexes only by account/asset), so this walks the chain from the
// top the way the teacher's explorer walked led.Blocks.
func (s *LedgerService) TxByHash(hash core.Hash) (*core.Transaction, error) {
	top := s.coord.BlockQuery().TopHeight()
	for h := top; h >= 1; h-- {
		blk, ok := s.coord.BlockQuery().GetBlockByHeight(h)
		if !ok {
			continue
		}
		for _, tx := range blk.Transactions {
			if tx.Hash == hash {
				return tx, nil
			}
		}
	}
	return nil, fmt.Errorf("transaction not found")
}

// Account returns the account entity identified by id.
func (s *LedgerService) Account(id core.AccountID) (core.Account, error) {
	acc, ok := s.coord.WSVQuery().GetAccount(id)
	if !ok {
		return core.Account{}, fmt.Errorf("account %s not found", id)
	}
	return acc, nil
}

// AccountAssetBalance returns the balance of (account, asset).
func (s *LedgerService) AccountAssetBalance(account core.AccountID, asset core.AssetID) (core.Amount, error) {
	bal, ok := s.coord.WSVQuery().GetAccountAsset(account, asset)
	if !ok {
		return core.Amount{}, fmt.Errorf("no balance for %s/%s", account, asset)
	}
	return bal, nil
}

// Info reports the current chain tip.
func (s *LedgerService) Info() map[string]any {
	top, ok := s.coord.BlockQuery().Top()
	if !ok {
		return map[string]any{"height": uint64(0), "hash": ""}
	}
	return map[string]any{"height": top.Header.Height, "hash": top.Hash.Hex()}
}
