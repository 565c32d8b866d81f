/*
Package swapd links together all the various components
to construct the swapd ledger.
*/
package swapd

import (
	"path/filepath"
	"strings"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/app"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/store/iavl"
	"github.com/iov-one/swap/x"
	"github.com/iov-one/swap/x/custody"
	"github.com/iov-one/swap/x/escrow"
	"github.com/iov-one/swap/x/sigs"
	"github.com/iov-one/swap/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by the ledger info.
const Name = "swapd"

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewSavepoint(),
	)
}

// Controllers groups the controllers shared by handlers and queries.
type Controllers struct {
	Custody *custody.Controller
	Escrow  *escrow.Controller
}

// NewControllers returns escrow and custody controllers wired together.
func NewControllers() Controllers {
	cust := custody.NewController()
	return Controllers{
		Custody: cust,
		Escrow:  escrow.NewController(custody.NewExecutor(cust)),
	}
}

// Router returns a router dispatching to all extension handlers.
func Router(authFn x.Authenticator, ctrls Controllers) *app.Router {
	r := app.NewRouter()
	sigs.RegisterRoutes(r, authFn)
	custody.RegisterRoutes(r, authFn, ctrls.Custody)
	escrow.RegisterRoutes(r, authFn, ctrls.Escrow)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into NewLedger.
func Stack(ctrls Controllers) swap.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn, ctrls))
}

// Initializers returns the genesis loaders of all extensions.
func Initializers() swap.Initializer {
	return app.ChainInitializers(
		custody.Initializer{},
		escrow.Initializer{},
	)
}

// Ledger opens the ledger stored under dbPath. An empty path creates an in
// memory ledger.
func Ledger(dbPath string, ctrls Controllers, clock app.Clock, logger log.Logger) (*app.Ledger, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return nil, err
	}
	l, err := app.NewLedger(Name, kv, Stack(ctrls), clock)
	if err != nil {
		return nil, err
	}
	return l.WithLogger(logger), nil
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (swap.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.MockCommitStore(), nil
	}

	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "database path %q", dbPath)
	}

	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	return iavl.NewCommitStore(dir, name)
}
