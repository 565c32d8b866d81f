package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/gconf"
)

const confPkg = "custody"

// Configuration of the custody extension.
type Configuration struct {
	// Owner is allowed to update the configuration.
	Owner swap.Address `cbor:"1,keyasint" json:"owner"`
	// AccountDeposit is charged from the payer reserve when an account is
	// opened and released when it is closed.
	AccountDeposit uint64 `cbor:"2,keyasint" json:"account_deposit"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(b []byte) error { return codec.Unmarshal(b, c) }
func (c *Configuration) GetOwner() swap.Address   { return c.Owner }

func (c *Configuration) Validate() error {
	// owner is optional, without it the configuration is immutable
	if len(c.Owner) != 0 {
		if err := c.Owner.Validate(); err != nil {
			return errors.Wrap(err, "owner address")
		}
	}
	return nil
}

// loadConf returns the stored configuration. A missing configuration is
// the zero configuration: no deposit is charged.
func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		return conf, nil
	default:
		return conf, errors.Wrap(err, "load configuration")
	}
}
