package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	swapd "github.com/iov-one/swap/cmd/swapd/app"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/x/escrow"
)

func cmdMake(e env, args []string) error {
	fl := pflag.NewFlagSet("make", pflag.ContinueOnError)
	var (
		keyName  = fl.String("key", "", "name of the maker key")
		kindName = fl.String("kind", "full", "escrow kind: full, partial, multi or timeboxed")
		seed     = fl.Uint64("seed", 0, "seed distinguishing escrows of the same maker")
		duration = fl.Int64("duration", 0, "lifetime in seconds, time boxed escrows only")
		out      = fl.String("out", "", "write the signed message to this file instead of submitting it")
		offered  asset.Bundle
		expected asset.Bundle
	)
	fl.Var(&offered, "offer", `offered assets, "<amount> <ticker>" comma separated, repeatable`)
	fl.Var(&expected, "expect", `expected assets, for a partial fill the price of one offered unit`)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}

	kind, err := escrow.ParseKind(*kindName)
	if err != nil {
		return err
	}
	key, err := loadKey(e.conf.keyPath(*keyName))
	if err != nil {
		return err
	}
	maker := key.PublicKey().Address()
	msg := &escrow.MakeMsg{
		Kind:     kind,
		Maker:    maker,
		Seed:     *seed,
		Offered:  offered,
		Expected: expected,
		Duration: *duration,
	}
	if err := e.submit(*keyName, msg, *out); err != nil {
		return err
	}
	fmt.Fprintln(e.out, escrow.FormatID(escrow.Key(maker, *seed)))
	return nil
}

func cmdTake(e env, args []string) error {
	fl := pflag.NewFlagSet("take", pflag.ContinueOnError)
	var (
		keyName = fl.String("key", "", "name of the taker key")
		id      = fl.String("id", "", "escrow id, <maker>/<seed>")
		amount  = fl.Uint64("amount", 0, "offered amount to take, partial fill escrows only")
		legs    = fl.StringSlice("legs", nil, "multi asset handles: asset,source,destination for every expected then offered asset")
		out     = fl.String("out", "", "write the signed message to this file instead of submitting it")
	)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	key, err := escrow.ParseID(*id)
	if err != nil {
		return err
	}
	signer, err := loadKey(e.conf.keyPath(*keyName))
	if err != nil {
		return err
	}
	taker := signer.PublicKey().Address()

	msg := &escrow.TakeMsg{EscrowID: key, Taker: taker, Amount: *amount}
	if len(*legs) != 0 {
		if msg.Legs, err = escrow.ParseLegs(*legs); err != nil {
			return err
		}
	} else {
		// a multi asset escrow is settled over the canonical accounts
		err := e.view(func(ctrls swapd.Controllers, ctx swap.Context, db swap.ReadOnlyKVStore) error {
			es, err := ctrls.Escrow.Escrow(db, key)
			if err != nil {
				return err
			}
			if es.Kind == escrow.MultiAsset {
				msg.Legs = escrow.TakeLegs(es, taker)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return e.submit(*keyName, msg, *out)
}

func cmdRefund(e env, args []string) error {
	fl := pflag.NewFlagSet("refund", pflag.ContinueOnError)
	var (
		keyName = fl.String("key", "", "name of the maker key")
		id      = fl.String("id", "", "escrow id, <maker>/<seed>")
		out     = fl.String("out", "", "write the signed message to this file instead of submitting it")
	)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	key, err := escrow.ParseID(*id)
	if err != nil {
		return err
	}
	return e.submit(*keyName, &escrow.RefundMsg{EscrowID: key}, *out)
}

// escrowView is the printed form of an escrow.
type escrowView struct {
	ID        string   `yaml:"id"`
	Kind      string   `yaml:"kind"`
	Maker     string   `yaml:"maker"`
	Authority string   `yaml:"authority"`
	Offered   string   `yaml:"offered"`
	Expected  string   `yaml:"expected"`
	Remaining uint64   `yaml:"remaining,omitempty"`
	ExpiresAt string   `yaml:"expires_at,omitempty"`
	Vaults    []string `yaml:"vaults"`
}

func newEscrowView(key []byte, es *escrow.Escrow) escrowView {
	v := escrowView{
		ID:        escrow.FormatID(key),
		Kind:      es.Kind.String(),
		Maker:     es.Maker.String(),
		Authority: es.Authority.String(),
		Offered:   es.Offered.String(),
		Expected:  es.Expected.String(),
		Remaining: es.Remaining,
	}
	if es.ExpiresAt != 0 {
		v.ExpiresAt = es.ExpiresAt.String()
	}
	for _, vault := range es.Vaults() {
		v.Vaults = append(v.Vaults, vault.String())
	}
	return v
}

func printYAML(e env, v interface{}) error {
	raw, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	_, err = e.out.Write(raw)
	return err
}

func cmdShow(e env, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInvalidInput, "usage: show <maker>/<seed>")
	}
	key, err := escrow.ParseID(args[0])
	if err != nil {
		return err
	}
	return e.view(func(ctrls swapd.Controllers, ctx swap.Context, db swap.ReadOnlyKVStore) error {
		es, err := ctrls.Escrow.Escrow(db, key)
		if err != nil {
			return err
		}
		return printYAML(e, newEscrowView(key, es))
	})
}

func cmdList(e env, args []string) error {
	fl := pflag.NewFlagSet("list", pflag.ContinueOnError)
	var (
		maker   = fl.String("maker", "", "only escrows of this maker, key name or address")
		offered = fl.String("asset", "", "only escrows offering this asset")
	)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if *maker != "" && *offered != "" {
		return errors.Wrap(errors.ErrInvalidInput, "use either --maker or --asset")
	}
	var makerAddr swap.Address
	if *maker != "" {
		var err error
		if makerAddr, err = resolveAddress(e.conf, *maker); err != nil {
			return err
		}
	}
	return e.view(func(ctrls swapd.Controllers, ctx swap.Context, db swap.ReadOnlyKVStore) error {
		var (
			keys [][]byte
			all  []*escrow.Escrow
			err  error
		)
		switch {
		case makerAddr != nil:
			keys, all, err = ctrls.Escrow.ByMaker(db, makerAddr)
		case *offered != "":
			keys, all, err = ctrls.Escrow.ByOffered(db, strings.ToUpper(*offered))
		default:
			keys, all, err = ctrls.Escrow.All(db)
		}
		if err != nil {
			return err
		}
		views := make([]escrowView, len(all))
		for i := range all {
			views[i] = newEscrowView(keys[i], all[i])
		}
		return printYAML(e, views)
	})
}
