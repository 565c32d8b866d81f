package main

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/app"
	swapd "github.com/iov-one/swap/cmd/swapd/app"
	"github.com/iov-one/swap/crypto"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

// env carries what every command needs.
type env struct {
	conf   Config
	logger log.Logger
	out    io.Writer
	// at overrides the ledger clock when not zero.
	at time.Time
}

// newLogger returns a TM logger writing to w filtered by level.
func newLogger(w io.Writer, level string) (log.Logger, error) {
	if level == "none" {
		return log.NewNopLogger(), nil
	}
	opt, err := log.AllowLevel(level)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(w)).With("module", "swapd")
	return log.NewFilter(logger, opt), nil
}

func (e env) clock() app.Clock {
	if e.at.IsZero() {
		return app.SystemClock()
	}
	return app.NewFixedClock(e.at)
}

// open opens the ledger stored in the home directory.
func (e env) open() (*app.Ledger, swapd.Controllers, error) {
	ctrls := swapd.NewControllers()
	if err := os.MkdirAll(e.conf.Home, 0o700); err != nil {
		return nil, ctrls, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	l, err := swapd.Ledger(e.conf.dbPath(), ctrls, e.clock(), e.logger)
	return l, ctrls, err
}

// view runs fn over the current ledger state.
func (e env) view(fn func(ctrls swapd.Controllers, ctx swap.Context, db swap.ReadOnlyKVStore) error) error {
	l, ctrls, err := e.open()
	if err != nil {
		return err
	}
	defer l.Close()
	return l.View(func(ctx swap.Context, db swap.ReadOnlyKVStore) error {
		return fn(ctrls, ctx, db)
	})
}

// sign wraps msg in an envelope signed with the next sequence of key.
func (e env) sign(l *app.Ledger, key *crypto.PrivateKey, msg swap.Msg) (*sigs.Envelope, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	var seq int64
	err := l.View(func(ctx swap.Context, db swap.ReadOnlyKVStore) error {
		var err error
		seq, err = sigs.NextNonce(db, key.PublicKey().Address())
		return err
	})
	if err != nil {
		return nil, err
	}
	chainID := l.ChainID()
	if chainID == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "ledger not initialized, run init first")
	}
	env := sigs.NewEnvelope(msg)
	if err := env.Sign(key, chainID, seq); err != nil {
		return nil, err
	}
	return env, nil
}

// submit signs msg with the named key and either delivers and commits it,
// or writes the signed envelope to outPath when it is set.
func (e env) submit(keyName string, msg swap.Msg, outPath string) error {
	key, err := loadKey(e.conf.keyPath(keyName))
	if err != nil {
		return err
	}
	l, _, err := e.open()
	if err != nil {
		return err
	}
	defer l.Close()

	signed, err := e.sign(l, key, msg)
	if err != nil {
		return err
	}
	if outPath != "" {
		raw, err := signed.Marshal()
		if err != nil {
			return err
		}
		if err := ioutil.WriteFile(outPath, raw, 0o600); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
		fmt.Fprintf(e.out, "signed %s written to %s\n", msg.Path(), outPath)
		return nil
	}
	return e.deliver(l, signed)
}

// deliver applies a signed message and commits the ledger.
func (e env) deliver(l *app.Ledger, msg swap.Msg) error {
	res, err := l.Deliver(msg)
	if err != nil {
		return err
	}
	id, err := l.Commit()
	if err != nil {
		return err
	}
	if res.Log != "" {
		fmt.Fprintln(e.out, res.Log)
	}
	e.logger.Debug("committed", "height", id.Version, "hash", fmt.Sprintf("%X", id.Hash))
	return nil
}
