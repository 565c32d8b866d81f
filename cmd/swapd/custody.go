package main

import (
	"fmt"
	"io/ioutil"

	"github.com/spf13/pflag"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	swapd "github.com/iov-one/swap/cmd/swapd/app"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/x/custody"
)

func cmdTransfer(e env, args []string) error {
	fl := pflag.NewFlagSet("transfer", pflag.ContinueOnError)
	var (
		keyName = fl.String("key", "", "name of the sender key")
		to      = fl.String("to", "", "recipient, key name or address")
		out     = fl.String("out", "", "write the signed message to this file instead of submitting it")
		amount  asset.Entry
	)
	fl.Var(&amount, "amount", `"<amount> <ticker>" to send`)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	key, err := loadKey(e.conf.keyPath(*keyName))
	if err != nil {
		return err
	}
	recipient, err := resolveAddress(e.conf, *to)
	if err != nil {
		return err
	}
	msg := &custody.TransferMsg{
		Sender:    key.PublicKey().Address(),
		Recipient: recipient,
		Amount:    amount,
	}
	return e.submit(*keyName, msg, *out)
}

// balanceView is the printed form of an owner's holdings.
type balanceView struct {
	Owner    string            `yaml:"owner"`
	Reserve  uint64            `yaml:"reserve"`
	Accounts map[string]uint64 `yaml:"accounts"`
}

func cmdBalance(e env, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInvalidInput, "usage: balance <key name or address>")
	}
	owner, err := resolveAddress(e.conf, args[0])
	if err != nil {
		return err
	}
	return e.view(func(ctrls swapd.Controllers, ctx swap.Context, db swap.ReadOnlyKVStore) error {
		accounts, err := ctrls.Custody.AccountsOf(db, owner)
		if err != nil {
			return err
		}
		reserve, err := ctrls.Custody.Reserve(db, owner)
		if err != nil {
			return err
		}
		v := balanceView{
			Owner:    owner.String(),
			Reserve:  reserve,
			Accounts: make(map[string]uint64, len(accounts)),
		}
		for _, a := range accounts {
			v.Accounts[a.Ticker] = a.Balance
		}
		return printYAML(e, v)
	})
}

// cmdSubmit delivers a message signed earlier with --out.
func cmdSubmit(e env, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInvalidInput, "usage: submit <file>")
	}
	raw, err := ioutil.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	signed, err := swapd.DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	l, _, err := e.open()
	if err != nil {
		return err
	}
	defer l.Close()
	return e.deliver(l, signed)
}

// cmdInspect prints a signed message file in CBOR diagnostic notation
// together with the decoded route.
func cmdInspect(e env, args []string) error {
	if len(args) != 1 {
		return errors.Wrap(errors.ErrInvalidInput, "usage: inspect <file>")
	}
	raw, err := ioutil.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	signed, err := swapd.DecodeEnvelope(raw)
	if err != nil {
		return err
	}
	diag, err := codec.Diagnose(raw)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	fmt.Fprintf(e.out, "path: %s\nsignatures: %d\n%s\n", signed.Path(), len(signed.GetSignatures()), diag)
	return nil
}
