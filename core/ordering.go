package core

// ordering.go – C7. A leader-side batcher that collects incoming
// transactions and periodically (or on batch-full) emits a numbered
// proposal. Re-expressed from original_source/irohad/ordering/impl/
// ordering_service_impl.cpp's uvw event-loop-timer-plus-in-process-event
// design as a single goroutine consuming a submission channel merged
// with a time.Ticker (spec.md §9 Design Notes): "a single-consumer
// worker task consuming a channel merged with a periodic tick; size-
// trigger is a same-thread fast path."
//
// proposal_height starts at 2 in the original and is only consumed by a
// non-empty proposal — matching the "only non-empty proposals consume a
// height" resolution in SPEC_FULL.md's Open Questions.

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// PeerQuery is the collaborator interface of spec.md §6.
type PeerQuery interface {
	GetLedgerPeers() []Peer
}

// Transport is the collaborator interface of spec.md §6.
type Transport interface {
	PublishProposal(proposal Proposal, peers []string)
}

// OrderingConfig configures the batcher (spec.md §4.7).
type OrderingConfig struct {
	MaxSize int
	Delay   time.Duration
}

type orderingState int

const (
	stateIdle orderingState = iota
	stateBatching
	stateEmitting
)

// OrderingService is the batcher of spec.md §4.7.
type OrderingService struct {
	cfg       OrderingConfig
	transport Transport
	peers     PeerQuery
	logger    logrus.FieldLogger

	mu    sync.Mutex
	queue []*Transaction
	state orderingState

	nextHeight uint64 // starts at 2; advances only on a non-empty emission

	wake    chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
}

// NewOrderingService constructs a batcher bound to a peer set provider
// and a proposal transport, starting from proposal height 2.
func NewOrderingService(cfg OrderingConfig, transport Transport, peers PeerQuery, logger logrus.FieldLogger) *OrderingService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &OrderingService{
		cfg:        cfg,
		transport:  transport,
		peers:      peers,
		logger:     logger,
		nextHeight: 2,
		wake:       make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start launches the single-consumer worker goroutine. Idempotent.
func (o *OrderingService) Start() {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return
	}
	o.started = true
	o.mu.Unlock()
	go o.run()
}

// Submit enqueues a transaction from any producer goroutine. Producers
// never block on the consumer (spec.md §5): the push itself is a
// mutex-protected append, and the size-trigger wake-up is non-blocking.
func (o *OrderingService) Submit(tx *Transaction) {
	o.mu.Lock()
	o.queue = append(o.queue, tx)
	size := len(o.queue)
	if o.state == stateIdle {
		o.state = stateBatching
	}
	o.mu.Unlock()

	if size >= o.cfg.MaxSize {
		select {
		case o.wake <- struct{}{}:
		default:
		}
	}
}

func (o *OrderingService) run() {
	timer := time.NewTimer(o.cfg.Delay)
	defer timer.Stop()
	for {
		select {
		case <-o.wake:
			o.mu.Lock()
			full := len(o.queue) >= o.cfg.MaxSize
			o.mu.Unlock()
			if full {
				stopAndDrain(timer)
				o.emit()
				timer.Reset(o.cfg.Delay)
			}
		case <-timer.C:
			o.emit()
			timer.Reset(o.cfg.Delay)
		case <-o.stopCh:
			o.emit()
			close(o.doneCh)
			return
		}
	}
}

func stopAndDrain(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// emit drains up to MaxSize transactions FIFO and publishes a proposal.
// Only a non-empty drain consumes a height. Runs exclusively on the
// worker goroutine, so it never overlaps another emission (the
// "Emitting" state of spec.md §4.7 is non-reentrant by construction).
func (o *OrderingService) emit() {
	o.mu.Lock()
	if len(o.queue) == 0 {
		o.state = stateIdle
		o.mu.Unlock()
		return
	}
	o.state = stateEmitting
	n := o.cfg.MaxSize
	if n > len(o.queue) || n <= 0 {
		n = len(o.queue)
	}
	batch := append([]*Transaction(nil), o.queue[:n]...)
	o.queue = o.queue[n:]
	height := o.nextHeight
	o.nextHeight++
	o.mu.Unlock()

	proposal := Proposal{Height: height, Transactions: batch}
	correlationID := uuid.NewString()

	var peerAddrs []string
	for _, p := range o.peers.GetLedgerPeers() {
		peerAddrs = append(peerAddrs, p.Address)
	}

	o.logger.WithFields(logrus.Fields{
		"proposal_height": height,
		"size":            len(batch),
		"correlation_id":  correlationID,
	}).Info("emitting proposal")

	o.transport.PublishProposal(proposal, peerAddrs)

	o.mu.Lock()
	if o.state == stateEmitting {
		if len(o.queue) == 0 {
			o.state = stateIdle
		} else {
			o.state = stateBatching
		}
	}
	o.mu.Unlock()
}

// Stop stops accepting the timer/size triggers, drains at most one
// final proposal, and waits for the worker goroutine to exit (spec.md
// §5 "Cancellation & timeouts").
func (o *OrderingService) Stop() {
	o.mu.Lock()
	started := o.started
	o.mu.Unlock()
	if !started {
		return
	}
	close(o.stopCh)
	<-o.doneCh
}
