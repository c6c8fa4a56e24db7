package core

// coordinator.go – C8. Constructs and owns the block store, WSV and
// query index; vends read-only query handles and mutable-storage
// staging objects. Re-expressed from the teacher's process-wide
// singleton `db` (core/ledger.go's package-level CurrentLedger/InitLedger
// pattern) as an explicit object threaded through constructors — spec.md
// §9 Design Notes flags the global singleton as the anti-pattern to drop.

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Coordinator is the top-level object of spec.md §4.8.
type Coordinator struct {
	blocks *BlockStore
	wsv    *WSV
	index  atomic.Pointer[QueryIndex] // published wholesale on each commit, like wsv
	hasher HashProvider
	logger logrus.FieldLogger

	mu     sync.Mutex // guards msOpen; serializes commit()
	msOpen bool
}

// NewCoordinator opens (or creates) the block store at blockStorePath
// and rebuilds the WSV and query index by replaying it. On an empty
// store it starts from genesis state: empty maps, next height 1.
func NewCoordinator(blockStorePath string, hasher HashProvider, logger logrus.FieldLogger) (*Coordinator, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if hasher == nil {
		hasher = NewHashProvider()
	}
	bs, err := OpenBlockStore(blockStorePath, hasher, logger)
	if err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}
	c := &Coordinator{
		blocks: bs,
		wsv:    newWSV(),
		hasher: hasher,
		logger: logger,
	}
	c.index.Store(newQueryIndex())
	if err := c.rebuildFromBlockStore(); err != nil {
		return nil, fmt.Errorf("coordinator: rebuild: %w", err)
	}
	return c, nil
}

// rebuildFromBlockStore replays every committed block through the
// executor to reconstruct WSV + query index state. Invoked once at
// startup; never touches the durable log.
func (c *Coordinator) rebuildFromBlockStore() error {
	top := c.blocks.TopHeight()
	if top == 0 {
		return nil
	}
	snap := newEmptySnapshot()
	idx := newQueryIndex()
	for h := uint64(1); h <= top; h++ {
		blk, ok := c.blocks.GetBlockByHeight(h)
		if !ok {
			return fmt.Errorf("%w: missing block at height %d during rebuild", ErrIndexInconsistency, h)
		}
		for i, tx := range blk.Transactions {
			trial := snap.clone()
			var touched []balanceKey
			failed := false
			for _, cmd := range tx.Commands {
				t, err := executeCommand(trial, cmd)
				if err != nil {
					failed = true
					break
				}
				touched = append(touched, t...)
			}
			if failed {
				continue
			}
			snap = trial
			ref := TxRef{Height: blk.Header.Height, Index: uint32(i), TxHash: tx.Hash}
			idx.recordTransaction(ref, tx.Header.CreatorAccountID, txTouchedKeys(tx, touched))
		}
	}
	c.wsv.publish(snap)
	c.index.Store(idx)
	return nil
}

// BlockQuery returns the read-only block store handle (spec.md §4.2).
func (c *Coordinator) BlockQuery() *BlockStore { return c.blocks }

// WSVQuery returns the read-only WSV handle (spec.md §4.3).
func (c *Coordinator) WSVQuery() *WSV { return c.wsv }

// QueryIndexHandle returns the query index, paired with the block store
// for reference resolution, for the history queries of spec.md §4.4.
func (c *Coordinator) QueryIndexHandle() *QueryIndex { return c.index.Load() }

// CreateMutableStorage opens the single allowed concurrent mutable
// storage. A second concurrent attempt fails with ErrBusy.
func (c *Coordinator) CreateMutableStorage() (*MutableStorage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.msOpen {
		return nil, ErrBusy
	}
	c.msOpen = true
	return &MutableStorage{coord: c}, nil
}

func (c *Coordinator) releaseMutableStorage() {
	c.mu.Lock()
	c.msOpen = false
	c.mu.Unlock()
}

// Commit atomically publishes ms's staged writes: block-store append is
// attempted first since it is the durable source of truth rebuildable
// state is replayed from; only once it succeeds are the WSV snapshot and
// query index swapped in, so a StoreIOError never leaves readers looking
// at state the durable log doesn't back (spec.md §7 "catastrophic I/O
// errors during commit propagate up and stop the node").
func (c *Coordinator) Commit(ms *MutableStorage) error {
	defer ms.Discard()
	c.mu.Lock()
	defer c.mu.Unlock()

	if ms.block == nil {
		return fmt.Errorf("coordinator: commit called before a successful Apply")
	}
	if err := c.blocks.Append(ms.block); err != nil {
		return err
	}
	c.wsv.publish(ms.staged)
	c.index.Store(ms.index)
	c.logger.WithFields(logrus.Fields{"height": ms.block.Header.Height}).Info("block committed")
	return nil
}

// Close releases the underlying block store file handle.
func (c *Coordinator) Close() error { return c.blocks.Close() }

// wsvPeerQuery adapts the WSV's GetPeers read to the ordering service's
// PeerQuery collaborator interface (spec.md §6 "PeerQuery.get_ledger_peers").
type wsvPeerQuery struct{ wsv *WSV }

func (w wsvPeerQuery) GetLedgerPeers() []Peer { return w.wsv.GetPeers() }

// PeerQuery returns a PeerQuery bound to this coordinator's WSV, for
// wiring an OrderingService without exposing the WSV's full read API.
func (c *Coordinator) PeerQuery() PeerQuery { return wsvPeerQuery{c.wsv} }
