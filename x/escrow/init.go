package escrow

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/gconf"
)

// Initializer fulfils the Initializer interface to load data from the
// genesis file.
type Initializer struct{}

var _ swap.Initializer = Initializer{}

// FromGenesis stores the escrow configuration if the genesis declares one.
// Escrows cannot be created at genesis, they require funded vaults.
func (Initializer) FromGenesis(opts swap.Options, db swap.KVStore) error {
	var conf Configuration
	switch err := gconf.InitConfig(db, opts, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		return nil
	default:
		return errors.Wrap(err, "init configuration")
	}
}
