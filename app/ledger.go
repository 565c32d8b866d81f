package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger is the host of all escrow and custody state. It applies one
// message at a time: every Deliver call observes the effects of all calls
// that returned before it and none of a concurrent one.
//
// Each message runs inside its own cache wrap. The cache is written only
// when the handler succeeds, so a failed message leaves no trace.
type Ledger struct {
	mu sync.Mutex

	// name is reported by Info
	name    string
	backend swap.CommitKVStore
	store   *CommitStore
	handler swap.Handler
	clock   Clock
	logger  log.Logger

	// chainID is loaded from the store or set once by InitChain
	chainID string
	// height is the version of the last commit
	height int64
	// last is the block time of the last delivered message. The clock is
	// never allowed to go behind it.
	last time.Time
}

// NewLedger loads the latest committed state of store and returns a ledger
// dispatching messages to handler.
func NewLedger(name string, store swap.CommitKVStore, handler swap.Handler, clock Clock) (*Ledger, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	info, err := cs.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	chainID, err := loadChainID(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	last, err := loadBlockTime(cs.DeliverStore())
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &Ledger{
		name:    name,
		backend: store,
		store:   cs,
		handler: handler,
		clock:   clock,
		logger:  log.NewNopLogger(),
		chainID: chainID,
		height:  info.Version,
		last:    last,
	}, nil
}

// WithLogger sets the logger on the Ledger and returns it,
// to make it easy to chain in initialization
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.logger = logger
	return l
}

// ChainID returns the chain id or an empty string if the ledger was not
// initialized yet.
func (l *Ledger) ChainID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.chainID
}

// Info returns the name and the last committed version of the ledger.
func (l *Ledger) Info() (string, swap.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	id, err := l.store.CommitInfo()
	return l.name, id, err
}

// InitChain stores the chain id and runs all initializers over the genesis
// application state. It can be called only once for a store.
func (l *Ledger) InitChain(gen Genesis, init swap.Initializer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID != "" {
		return errors.Wrapf(errors.ErrInvalidState, "genesis previously loaded for chain %s", l.chainID)
	}

	db := l.store.DeliverStore().CacheWrap()
	if err := saveChainID(db, gen.ChainID); err != nil {
		db.Discard()
		return err
	}
	if init != nil {
		if err := init.FromGenesis(gen.AppState, db); err != nil {
			db.Discard()
			return errors.Wrap(err, "genesis")
		}
	}
	if err := db.Write(); err != nil {
		return errors.Wrap(err, "write genesis")
	}
	l.chainID = gen.ChainID
	l.logger.Info("Genesis loaded", "chain", gen.ChainID)
	return nil
}

// context returns a context for the next delivered message. The caller
// must hold the lock.
func (l *Ledger) context(now time.Time) swap.Context {
	ctx := context.Background()
	ctx = swap.WithLogger(ctx, l.logger)
	ctx = swap.WithChainID(ctx, l.chainID)
	ctx = swap.WithHeight(ctx, l.height+1)
	ctx = swap.WithBlockTime(ctx, now)
	return ctx
}

// Deliver applies msg to the ledger state. Either all of its effects are
// applied or none of them.
func (l *Ledger) Deliver(msg swap.Msg) (*swap.DeliverResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.chainID == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "ledger not initialized")
	}
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}

	now := l.clock.Now()
	if now.Before(l.last) {
		return nil, errors.Wrapf(errors.ErrInvalidState, "block time %s is before the last delivered message at %s", now, l.last)
	}

	ctx := swap.WithLogInfo(l.context(now), "call", "deliver")
	cache := l.store.DeliverStore().CacheWrap()
	res, err := l.deliver(ctx, cache, msg)
	if err == nil {
		err = saveBlockTime(cache, now)
	}
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write")
	}
	l.last = now
	return res, nil
}

// deliver calls the handler and turns panics into errors.
func (l *Ledger) deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (res *swap.DeliverResult, err error) {
	defer errors.Recover(&err)
	res, err = l.handler.Deliver(ctx, db, msg)
	if err == nil && res == nil {
		res = &swap.DeliverResult{}
	}
	return res, err
}

// Commit persists all delivered messages and returns the new version.
func (l *Ledger) Commit() (swap.CommitID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id, err := l.store.Commit()
	if err != nil {
		return id, errors.Wrap(err, "commit")
	}
	l.height = id.Version
	l.logger.Debug("Commit synced",
		"height", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash))
	return id, nil
}

// View calls fn with a read only view of the current, possibly not yet
// committed, state. No message is delivered while fn runs.
func (l *Ledger) View(fn func(ctx swap.Context, db swap.ReadOnlyKVStore) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := context.Background()
	ctx = swap.WithLogger(ctx, l.logger)
	ctx = swap.WithBlockTime(ctx, l.clock.Now())
	return fn(ctx, l.store.DeliverStore())
}

// Close releases the backing store if it holds any resources. Delivered
// but not committed messages are lost.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
