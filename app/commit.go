package app

import (
	"encoding/binary"
	"time"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// CommitStore handles loading from a KVCommitStore, maintaining the deliver
// cache and returning useful state info.
type CommitStore struct {
	committed swap.CommitKVStore
	deliver   swap.KVCacheWrap
}

// NewCommitStore loads the CommitKVStore from disk and sets up the deliver
// cache.
func NewCommitStore(store swap.CommitKVStore) (*CommitStore, error) {
	if err := store.LoadLatestVersion(); err != nil {
		return nil, errors.Wrap(err, "load latest version")
	}
	return &CommitStore{
		committed: store,
		deliver:   store.CacheWrap(),
	}, nil
}

// CommitInfo returns the current height and hash
func (cs *CommitStore) CommitInfo() (swap.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit will flush deliver to the underlying store and commit it
// to disk. It then regenerates a new deliver cache. Callers must serialize
// access.
func (cs *CommitStore) Commit() (swap.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return swap.CommitID{}, err
	}

	// write the store to disk
	res, err := cs.committed.Commit()
	if err != nil {
		return res, err
	}

	cs.deliver = cs.committed.CacheWrap()
	return res, nil
}

// DeliverStore returns a store implementation that must be used during the
// delivery phase.
func (cs *CommitStore) DeliverStore() swap.CacheableKVStore {
	return cs.deliver
}

//------- storing chainID ---------

// _sw: is a prefix for ledger internal data
const chainIDKey = "_sw:chainID"

// loadChainID returns the chain id stored if any
func loadChainID(kv swap.ReadOnlyKVStore) (string, error) {
	v, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		return "", errors.Wrap(err, "load chain id")
	}
	return string(v), nil
}

// saveChainID stores a chain id in the kv store.
// Returns error if already set, or invalid name
func saveChainID(kv swap.KVStore, chainID string) error {
	if !swap.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInvalidInput, "chain id: %v", chainID)
	}
	k := []byte(chainIDKey)
	exists, err := kv.Has(k)
	if err != nil {
		return errors.Wrap(err, "load chainId")
	}
	if exists {
		return errors.Wrap(errors.ErrUnauthorized, "can't modify chain id after genesis init")
	}
	if err := kv.Set(k, []byte(chainID)); err != nil {
		return errors.Wrap(err, "save chainId")
	}
	return nil
}

//------- storing the last block time ---------

const blockTimeKey = "_sw:blockTime"

// loadBlockTime returns the time of the last delivered message or the zero
// time if none was delivered yet.
func loadBlockTime(kv swap.ReadOnlyKVStore) (time.Time, error) {
	raw, err := kv.Get([]byte(blockTimeKey))
	if err != nil {
		return time.Time{}, errors.Wrap(err, "load block time")
	}
	if raw == nil {
		return time.Time{}, nil
	}
	if len(raw) != 8 {
		return time.Time{}, errors.Wrapf(errors.ErrDatabase, "block time of %d bytes", len(raw))
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(raw))).UTC(), nil
}

func saveBlockTime(kv swap.KVStore, t time.Time) error {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(t.UnixNano()))
	if err := kv.Set([]byte(blockTimeKey), raw); err != nil {
		return errors.Wrap(err, "save block time")
	}
	return nil
}
