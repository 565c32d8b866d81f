package escrow

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/codec"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/gconf"
)

const confPkg = "escrow"

// Configuration of the escrow extension.
type Configuration struct {
	Owner swap.Address `cbor:"1,keyasint" json:"owner"`
	// MaxBundleSize limits the length of offered and expected bundles of
	// a multi asset escrow. Zero means the absolute limit of 10.
	MaxBundleSize uint32 `cbor:"2,keyasint" json:"max_bundle_size"`
	// RecordDeposit is charged from the maker reserve for the time an
	// escrow record exists.
	RecordDeposit uint64 `cbor:"3,keyasint" json:"record_deposit"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(b []byte) error { return codec.Unmarshal(b, c) }
func (c *Configuration) GetOwner() swap.Address   { return c.Owner }

func (c *Configuration) Validate() error {
	var errs error
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	}
	if c.MaxBundleSize > maxBundleSize {
		errs = errors.AppendField(errs, "MaxBundleSize",
			errors.Wrapf(errors.ErrInvalidInput, "must not be greater than %d", maxBundleSize))
	}
	return errs
}

// bundleLimit returns the effective bundle length limit.
func (c Configuration) bundleLimit() int {
	if c.MaxBundleSize == 0 {
		return maxBundleSize
	}
	return int(c.MaxBundleSize)
}

func loadConf(db gconf.ReadStore) (Configuration, error) {
	var conf Configuration
	switch err := gconf.Load(db, confPkg, &conf); {
	case err == nil, errors.ErrNotFound.Is(err):
		return conf, nil
	default:
		return conf, errors.Wrap(err, "load configuration")
	}
}
