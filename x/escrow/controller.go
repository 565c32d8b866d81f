package escrow

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/authority"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/orm"
	"github.com/iov-one/swap/store"
	"github.com/iov-one/swap/x/custody"
)

// Controller manages the escrow lifecycle. Funds are moved only through the
// executor; every operation is all or nothing.
type Controller struct {
	bucket orm.ModelBucket
	exec   *custody.Executor
}

// NewController returns a controller moving funds with given executor.
func NewController(exec *custody.Executor) *Controller {
	return &Controller{
		bucket: NewBucket(),
		exec:   exec,
	}
}

func accountOf(owner swap.Address, ticker string) swap.Address {
	return custody.AccountAddress(owner, ticker)
}

// atomic runs fn on an isolated cache of db. The cache is written only when
// fn succeeds.
func atomic(db swap.KVStore, fn func(swap.KVStore) error) error {
	var cache swap.KVCacheWrap
	if c, ok := db.(swap.CacheableKVStore); ok {
		cache = c.CacheWrap()
	} else {
		cache = store.NewBTreeCacheWrap(db, db.NewBatch(), nil)
	}
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	if err := cache.Write(); err != nil {
		return errors.Wrap(err, "write escrow changes")
	}
	return nil
}

// Make opens a new escrow. The authority is derived, a vault is created
// for every offered entry and the offered assets are moved from the maker
// accounts into the vaults. auth must authorize spending from the maker
// accounts. The escrow key is returned.
func (c *Controller) Make(ctx swap.Context, db swap.KVStore, msg *MakeMsg, auth custody.Authority) ([]byte, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}
	key := Key(msg.Maker, msg.Seed)

	err := atomic(db, func(db swap.KVStore) error {
		switch err := c.bucket.Has(db, key); {
		case err == nil:
			return errors.Wrapf(errors.ErrDuplicate, "escrow %s", FormatID(key))
		case !errors.ErrNotFound.Is(err):
			return err
		}

		conf, err := loadConf(db)
		if err != nil {
			return err
		}
		if limit := conf.bundleLimit(); len(msg.Offered) > limit || len(msg.Expected) > limit {
			return errors.Wrapf(errors.ErrInvalidInput, "bundle size limit is %d", limit)
		}
		for _, x := range msg.Expected {
			if _, err := c.exec.Decimals(db, x.Ticker); err != nil {
				return errors.Wrapf(err, "expected asset %s", x.Ticker)
			}
		}

		authAddr, bump, err := authority.Derive(authorityTag, msg.Maker, msg.Seed)
		if err != nil {
			return err
		}
		e := Escrow{
			Kind:      msg.Kind,
			Maker:     msg.Maker,
			Seed:      msg.Seed,
			Offered:   msg.Offered.Clone(),
			Expected:  msg.Expected.Clone(),
			Bump:      bump,
			Authority: authAddr,
			Deposit:   conf.RecordDeposit,
		}
		switch msg.Kind {
		case PartialFill:
			e.Total = msg.Offered[0].Amount
			e.Remaining = e.Total
		case TimeBoxed:
			t, err := now(ctx)
			if err != nil {
				return err
			}
			if e.ExpiresAt, err = t.AddSeconds(msg.Duration); err != nil {
				return errors.Wrap(err, "deadline")
			}
		}

		if err := c.exec.Lock(db, msg.Maker, e.Deposit); err != nil {
			return errors.Wrap(err, "record deposit")
		}
		for _, o := range e.Offered {
			vault, err := c.exec.CreateAccount(db, authAddr, o.Ticker, msg.Maker)
			if err != nil {
				return errors.Wrapf(err, "vault %s", o.Ticker)
			}
			src := accountOf(msg.Maker, o.Ticker)
			if err := c.exec.Transfer(ctx, db, o.Ticker, src, vault, o.Amount, auth); err != nil {
				return errors.Wrapf(err, "deposit %s", o)
			}
		}
		if err := c.bucket.Put(db, key, &e); err != nil {
			return errors.Wrap(err, "cannot store escrow")
		}
		swap.GetLogger(ctx).Debug("escrow made",
			"id", FormatID(key), "kind", e.Kind, "offered", e.Offered, "expected", e.Expected)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return key, nil
}

// Take settles an escrow in favour of msg.Taker. auth must authorize
// spending from the taker accounts. The payment always precedes the
// release of offered assets. The updated escrow is returned, or nil if the
// escrow was closed.
func (c *Controller) Take(ctx swap.Context, db swap.KVStore, msg *TakeMsg, auth custody.Authority) (*Escrow, error) {
	if err := msg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid message")
	}

	var open *Escrow
	err := atomic(db, func(db swap.KVStore) error {
		var e Escrow
		if err := c.bucket.One(db, msg.EscrowID, &e); err != nil {
			return errors.Wrap(err, "cannot load escrow from the store")
		}
		if err := checkDeadline(ctx, &e); err != nil {
			return err
		}
		proof, err := c.authorize(&e)
		if err != nil {
			return err
		}

		switch e.Kind {
		case FullFill, TimeBoxed:
			return c.takeWhole(ctx, db, msg, &e, auth, proof)
		case PartialFill:
			closed, err := c.takePart(ctx, db, msg, &e, auth, proof)
			if err == nil && !closed {
				open = &e
			}
			return err
		case MultiAsset:
			return c.takeBundle(ctx, db, msg, &e, auth, proof)
		default:
			return errors.Wrapf(errors.ErrInvalidState, "kind %s", e.Kind)
		}
	})
	if err != nil {
		return nil, err
	}
	return open, nil
}

func (c *Controller) takeWhole(ctx swap.Context, db swap.KVStore, msg *TakeMsg, e *Escrow, auth, proof custody.Authority) error {
	if msg.Amount != 0 || len(msg.Legs) != 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "amount and legs are not used by %s escrow", e.Kind)
	}
	x := e.Expected[0]
	if err := c.pay(ctx, db, e, msg.Taker, x.Ticker, accountOf(msg.Taker, x.Ticker), x.Amount, auth); err != nil {
		return err
	}
	vault := accountOf(e.Authority, e.Offered[0].Ticker)
	if _, err := c.exec.CloseAndReclaim(ctx, db, vault, msg.Taker, msg.Taker, proof); err != nil {
		return errors.Wrap(err, "release")
	}
	return c.close(ctx, db, msg.EscrowID, e, e.Maker)
}

func (c *Controller) takePart(ctx swap.Context, db swap.KVStore, msg *TakeMsg, e *Escrow, auth, proof custody.Authority) (bool, error) {
	if len(msg.Legs) != 0 {
		return false, errors.Wrapf(errors.ErrInvalidInput, "legs are not used by %s escrow", e.Kind)
	}
	if msg.Amount == 0 {
		return false, errors.Wrap(errors.ErrInvalidAmount, "amount to take must be positive")
	}
	if msg.Amount > e.Remaining {
		return false, errors.Wrapf(errors.ErrExceedsRemaining, "%d requested, %d remaining", msg.Amount, e.Remaining)
	}
	x := e.Expected[0]
	price, err := asset.Mul(msg.Amount, x.Amount)
	if err != nil {
		return false, errors.Wrap(err, "payment")
	}
	remaining, err := asset.Sub(e.Remaining, msg.Amount)
	if err != nil {
		return false, errors.Wrap(err, "remaining")
	}

	if err := c.pay(ctx, db, e, msg.Taker, x.Ticker, accountOf(msg.Taker, x.Ticker), price, auth); err != nil {
		return false, err
	}
	o := e.Offered[0]
	vault := accountOf(e.Authority, o.Ticker)
	dst, err := c.exec.EnsureAccount(db, msg.Taker, o.Ticker, msg.Taker)
	if err != nil {
		return false, errors.Wrap(err, "taker account")
	}
	if err := c.exec.Transfer(ctx, db, o.Ticker, vault, dst, msg.Amount, proof); err != nil {
		return false, errors.Wrap(err, "release")
	}

	if remaining == 0 {
		if _, err := c.exec.CloseAndReclaim(ctx, db, vault, msg.Taker, msg.Taker, proof); err != nil {
			return false, errors.Wrap(err, "close vault")
		}
		return true, c.close(ctx, db, msg.EscrowID, e, msg.Taker)
	}
	e.Remaining = remaining
	if err := c.bucket.Put(db, msg.EscrowID, e); err != nil {
		return false, errors.Wrap(err, "cannot store escrow")
	}
	return false, nil
}

func (c *Controller) takeBundle(ctx swap.Context, db swap.KVStore, msg *TakeMsg, e *Escrow, auth, proof custody.Authority) error {
	if msg.Amount != 0 {
		return errors.Wrapf(errors.ErrInvalidInput, "amount is not used by %s escrow", e.Kind)
	}
	pay, release, err := matchTake(e, msg.Legs)
	if err != nil {
		return err
	}
	for i, l := range pay {
		if !l.Destination.Equals(accountOf(e.Maker, l.Asset)) {
			return errors.Wrapf(errors.ErrInvalidInput, "payment leg %d: destination is not the maker account", i)
		}
		if err := c.pay(ctx, db, e, msg.Taker, l.Asset, l.Source, e.Expected[i].Amount, auth); err != nil {
			return errors.Wrapf(err, "payment leg %d", i)
		}
	}
	vaults := e.Vaults()
	for i, l := range release {
		if !l.Source.Equals(vaults[i]) {
			return errors.Wrapf(errors.ErrInvalidInput, "release leg %d: source is not the escrow vault", i)
		}
		if !l.Destination.Equals(accountOf(msg.Taker, l.Asset)) {
			return errors.Wrapf(errors.ErrInvalidInput, "release leg %d: destination is not the taker account", i)
		}
		dst, err := c.exec.EnsureAccount(db, msg.Taker, l.Asset, msg.Taker)
		if err != nil {
			return errors.Wrapf(err, "release leg %d: taker account", i)
		}
		if err := c.exec.Transfer(ctx, db, l.Asset, l.Source, dst, e.Offered[i].Amount, proof); err != nil {
			return errors.Wrapf(err, "release leg %d", i)
		}
		if _, err := c.exec.CloseAndReclaim(ctx, db, l.Source, msg.Taker, msg.Taker, proof); err != nil {
			return errors.Wrapf(err, "release leg %d: close vault", i)
		}
	}
	return c.close(ctx, db, msg.EscrowID, e, msg.Taker)
}

// pay moves amount of ticker from the source account to the maker account.
// A missing maker account is created, paid by the taker.
func (c *Controller) pay(ctx swap.Context, db swap.KVStore, e *Escrow, taker swap.Address, ticker string, src swap.Address, amount uint64, auth custody.Authority) error {
	dst, err := c.exec.EnsureAccount(db, e.Maker, ticker, taker)
	if err != nil {
		return errors.Wrap(err, "maker account")
	}
	if err := c.exec.Transfer(ctx, db, ticker, src, dst, amount, auth); err != nil {
		return errors.Wrap(err, "payment")
	}
	return nil
}

// Refund closes the escrow returning the residual content of every vault
// to the maker. auth must authorize the maker. Refunded amounts are
// returned in the order of the offered bundle.
func (c *Controller) Refund(ctx swap.Context, db swap.KVStore, key []byte, auth custody.Authority) (asset.Bundle, error) {
	if err := validateID(key); err != nil {
		return nil, err
	}

	var refunded asset.Bundle
	err := atomic(db, func(db swap.KVStore) error {
		var e Escrow
		if err := c.bucket.One(db, key, &e); err != nil {
			return errors.Wrap(err, "cannot load escrow from the store")
		}
		if auth == nil || !auth.Authorizes(ctx, e.Maker) {
			return errors.Wrap(errors.ErrUnauthorized, "maker signature required")
		}
		if err := checkRefundable(ctx, &e); err != nil {
			return err
		}
		proof, err := c.authorize(&e)
		if err != nil {
			return err
		}
		for i, vault := range e.Vaults() {
			moved, err := c.exec.CloseAndReclaim(ctx, db, vault, e.Maker, e.Maker, proof)
			if err != nil {
				return errors.Wrapf(err, "vault %s", e.Offered[i].Ticker)
			}
			refunded = append(refunded, asset.NewEntry(moved, e.Offered[i].Ticker))
		}
		return c.close(ctx, db, key, &e, e.Maker)
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

// authorize recomputes the vault authority of given escrow.
func (c *Controller) authorize(e *Escrow) (*authority.Proof, error) {
	proof, err := authority.Authorize(authorityTag, e.Maker, e.Seed, e.Bump, e.Authority)
	if err != nil {
		return nil, errors.Wrap(err, "vault authority")
	}
	return proof, nil
}

// close deletes the escrow record and releases its deposit to beneficiary.
// A refund and a take of a FullFill or TimeBoxed escrow pay the maker. The
// take that closes a PartialFill or MultiAsset escrow pays the taker.
func (c *Controller) close(ctx swap.Context, db swap.KVStore, key []byte, e *Escrow, beneficiary swap.Address) error {
	if err := c.bucket.Delete(db, key); err != nil {
		return errors.Wrap(err, "cannot delete escrow")
	}
	if err := c.exec.Unlock(db, beneficiary, e.Deposit); err != nil {
		return errors.Wrap(err, "record deposit")
	}
	swap.GetLogger(ctx).Debug("escrow closed", "id", FormatID(key), "deposit_to", beneficiary)
	return nil
}

// Escrow returns the open escrow stored under given key.
func (c *Controller) Escrow(db swap.ReadOnlyKVStore, key []byte) (*Escrow, error) {
	var e Escrow
	if err := c.bucket.One(db, key, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// ByMaker returns all open escrows of given maker.
func (c *Controller) ByMaker(db swap.ReadOnlyKVStore, maker swap.Address) ([][]byte, []*Escrow, error) {
	return c.scan(db, "maker", maker)
}

// ByOffered returns all open escrows offering given asset.
func (c *Controller) ByOffered(db swap.ReadOnlyKVStore, ticker string) ([][]byte, []*Escrow, error) {
	return c.scan(db, "offered", []byte(ticker))
}

// All returns all open escrows in key order.
func (c *Controller) All(db swap.ReadOnlyKVStore) ([][]byte, []*Escrow, error) {
	it, err := c.bucket.PrefixScan(db, nil, false)
	if err != nil {
		return nil, nil, err
	}
	return collect(it)
}

func (c *Controller) scan(db swap.ReadOnlyKVStore, index string, value []byte) ([][]byte, []*Escrow, error) {
	it, err := c.bucket.IndexScan(db, index, value)
	if err != nil {
		return nil, nil, err
	}
	return collect(it)
}

func collect(it orm.ModelIterator) ([][]byte, []*Escrow, error) {
	keys, models, err := orm.ToSlice(it, &Escrow{})
	if err != nil {
		return nil, nil, err
	}
	res := make([]*Escrow, len(models))
	for i, m := range models {
		res[i] = m.(*Escrow)
	}
	return keys, res, nil
}
