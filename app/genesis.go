package app

import (
	"encoding/json"
	"io/ioutil"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// Genesis file format. AppState holds one entry per extension, read by the
// registered initializers.
type Genesis struct {
	ChainID  string       `json:"chain_id"`
	AppState swap.Options `json:"app_state"`
}

// LoadGenesis tries to load a given file into a Genesis struct
func LoadGenesis(filePath string) (Genesis, error) {
	var gen Genesis

	raw, err := ioutil.ReadFile(filePath)
	if err != nil {
		return gen, errors.Wrapf(errors.ErrInvalidInput, "read genesis file: %s", err)
	}
	if err := json.Unmarshal(raw, &gen); err != nil {
		return gen, errors.Wrapf(errors.ErrInvalidInput, "unmarshal genesis file: %s", err)
	}
	if !swap.IsValidChainID(gen.ChainID) {
		return gen, errors.Wrapf(errors.ErrInvalidInput, "chain id: %q", gen.ChainID)
	}
	return gen, nil
}

// ChainInitializers lets you initialize many extensions with one function
func ChainInitializers(inits ...swap.Initializer) swap.Initializer {
	return chainInitializer{inits}
}

type chainInitializer struct {
	inits []swap.Initializer
}

// FromGenesis will pass opts to all Initializers in the list,
// aborting at the first error.
func (c chainInitializer) FromGenesis(opts swap.Options, kv swap.KVStore) error {
	for _, i := range c.inits {
		if err := i.FromGenesis(opts, kv); err != nil {
			return err
		}
	}
	return nil
}
