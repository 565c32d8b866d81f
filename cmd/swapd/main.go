package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/iov-one/swap/app"
	swapd "github.com/iov-one/swap/cmd/swapd/app"
	"github.com/iov-one/swap/crypto"
	"github.com/iov-one/swap/errors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type command func(env, []string) error

var commands = map[string]command{
	"init":     cmdInit,
	"keygen":   cmdKeygen,
	"address":  cmdAddress,
	"make":     cmdMake,
	"take":     cmdTake,
	"refund":   cmdRefund,
	"transfer": cmdTransfer,
	"submit":   cmdSubmit,
	"inspect":  cmdInspect,
	"show":     cmdShow,
	"list":     cmdList,
	"balance":  cmdBalance,
	"version":  cmdVersion,
}

func helpMessage(w io.Writer) {
	fmt.Fprintln(w, "swapd")
	fmt.Fprintln(w, "          Escrow based asset exchange ledger")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "help      Print this message")
	fmt.Fprintln(w, "init      Load the genesis file into a new ledger")
	fmt.Fprintln(w, "keygen    Create a named signing key")
	fmt.Fprintln(w, "address   Print the address of a named key")
	fmt.Fprintln(w, "make      Open an escrow")
	fmt.Fprintln(w, "take      Settle an escrow")
	fmt.Fprintln(w, "refund    Cancel an escrow and return the offered assets")
	fmt.Fprintln(w, "transfer  Move assets between owners")
	fmt.Fprintln(w, "submit    Deliver a message signed with --out")
	fmt.Fprintln(w, "inspect   Print a message signed with --out")
	fmt.Fprintln(w, "show      Print a single escrow")
	fmt.Fprintln(w, "list      Print open escrows")
	fmt.Fprintln(w, "balance   Print the accounts of an owner")
	fmt.Fprintln(w, "version   Print the app version")
	fmt.Fprintln(w, `
  --home string
        directory to store files under (default "$HOME/.swapd")
  --log-level string
        debug, info, error or none (default "info")
  --at string
        RFC3339 time used as the ledger clock`)
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

// run parses the global flags, loads the configuration and dispatches to
// the named command.
func run(args []string, stdout, stderr io.Writer) error {
	fl := pflag.NewFlagSet("swapd", pflag.ContinueOnError)
	fl.SetInterspersed(false)
	fl.SetOutput(stderr)
	fl.Usage = func() { helpMessage(stderr) }
	var (
		home     = fl.String("home", filepath.Join(os.ExpandEnv("$HOME"), ".swapd"), "directory to store files under")
		logLevel = fl.String("log-level", "", "debug, info, error or none")
		at       = fl.String("at", "", "RFC3339 time used as the ledger clock")
	)
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	if fl.NArg() == 0 {
		helpMessage(stderr)
		return errors.Wrap(errors.ErrInvalidInput, "missing command")
	}
	name, rest := fl.Arg(0), fl.Args()[1:]
	if name == "help" {
		helpMessage(stdout)
		return nil
	}
	cmd, ok := commands[name]
	if !ok {
		return errors.Wrapf(errors.ErrInvalidInput, "unknown command: %s", name)
	}

	conf, err := LoadConfig(*home)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		conf.LogLevel = *logLevel
		if err := conf.Validate(); err != nil {
			return err
		}
	}
	logger, err := newLogger(stderr, conf.LogLevel)
	if err != nil {
		return err
	}
	e := env{conf: conf, logger: logger, out: stdout}
	if *at != "" {
		if e.at, err = time.Parse(time.RFC3339, *at); err != nil {
			return errors.Wrapf(errors.ErrInvalidInput, "--at: %s", err)
		}
	}
	return cmd(e, rest)
}

func cmdInit(e env, args []string) error {
	fl := pflag.NewFlagSet("init", pflag.ContinueOnError)
	genesis := fl.String("genesis", e.conf.Genesis, "genesis file to load")
	if err := fl.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	gen, err := app.LoadGenesis(*genesis)
	if err != nil {
		return err
	}
	l, _, err := e.open()
	if err != nil {
		return err
	}
	defer l.Close()
	if err := l.InitChain(gen, swapd.Initializers()); err != nil {
		return err
	}
	if _, err := l.Commit(); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "initialized chain %s in %s\n", gen.ChainID, e.conf.Home)
	return nil
}

func cmdKeygen(e env, args []string) error {
	if len(args) != 1 || !isKeyName(args[0]) {
		return errors.Wrap(errors.ErrInvalidInput, "usage: keygen <name>")
	}
	key := crypto.GenPrivKeyEd25519()
	if err := saveKey(e.conf.keyPath(args[0]), key); err != nil {
		return err
	}
	return printAddress(e, key)
}

func cmdAddress(e env, args []string) error {
	if len(args) != 1 || !isKeyName(args[0]) {
		return errors.Wrap(errors.ErrInvalidInput, "usage: address <name>")
	}
	key, err := loadKey(e.conf.keyPath(args[0]))
	if err != nil {
		return err
	}
	return printAddress(e, key)
}

func printAddress(e env, key *crypto.PrivateKey) error {
	addr := key.PublicKey().Address()
	bech, err := addr.Bech32()
	if err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	fmt.Fprintf(e.out, "%s %s\n", addr, bech)
	return nil
}

func cmdVersion(e env, args []string) error {
	fmt.Fprintln(e.out, version)
	return nil
}
