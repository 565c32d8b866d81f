package orm

import (
	"bytes"
	"math"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// Indexer calculates the secondary index key for a given model. Returning
// a nil key means the model is not indexed.
type Indexer func(Model) ([]byte, error)

// MultiKeyIndexer calculates the secondary index keys for a given model.
type MultiKeyIndexer func(Model) ([][]byte, error)

func asMultiKeyIndexer(indexer Indexer) MultiKeyIndexer {
	return func(m Model) ([][]byte, error) {
		key, err := indexer(m)
		if err != nil || key == nil {
			return nil, err
		}
		return [][]byte{key}, nil
	}
}

const nativeIdxPrefix = "_x."

// nativeIndex is using the database native key ordering in order to
// maintain and provide access to an index. Each indexed value is stored
// under its own key and the value is always empty.
type nativeIndex struct {
	bucket  string
	name    string
	indexer MultiKeyIndexer
	unique  bool
}

func newNativeIndex(bucket, name string, indexer MultiKeyIndexer, unique bool) *nativeIndex {
	return &nativeIndex{
		bucket:  bucket,
		name:    name,
		indexer: indexer,
		unique:  unique,
	}
}

// Update updates the index for an entity stored under given key.
//
// prev == nil means insert
// next == nil means delete
func (ix *nativeIndex) Update(db swap.KVStore, key []byte, prev, next Model) error {
	if next == nil && prev == nil {
		return errors.Wrap(errors.ErrInvalidInput, "update requires at least one non-nil model")
	}

	var prevValues, nextValues [][]byte
	if prev != nil {
		values, err := ix.indexer(prev)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		prevValues = values
	}
	if next != nil {
		values, err := ix.indexer(next)
		if err != nil {
			return errors.Wrap(err, "indexer")
		}
		nextValues = values
	}

	for _, v := range subtract(prevValues, nextValues) {
		idxKey, err := ix.key(v, key)
		if err != nil {
			return err
		}
		if err := db.Delete(idxKey); err != nil {
			return errors.Wrap(err, "db delete")
		}
	}

	for _, v := range subtract(nextValues, prevValues) {
		if ix.unique {
			keys, err := ix.Keys(db, v)
			if err != nil {
				return err
			}
			for _, k := range keys {
				if !bytes.Equal(k, key) {
					return errors.Wrapf(errors.ErrDuplicate, "index %q value %X", ix.name, v)
				}
			}
		}
		idxKey, err := ix.key(v, key)
		if err != nil {
			return err
		}
		if err := db.Set(idxKey, []byte{}); err != nil {
			return errors.Wrap(err, "db set")
		}
	}
	return nil
}

func (ix *nativeIndex) key(value, ref []byte) ([]byte, error) {
	k, err := packNativeIdxKey([][]byte{[]byte(ix.bucket), []byte(ix.name), value, ref})
	if err != nil {
		return nil, errors.Wrap(err, "build index key")
	}
	return k, nil
}

// Keys returns all primary keys of the entities that were indexed under
// given value.
func (ix *nativeIndex) Keys(db swap.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	lookupKey, err := packNativeIdxKey([][]byte{[]byte(ix.bucket), []byte(ix.name), value})
	if err != nil {
		return nil, errors.Wrap(err, "build index key")
	}

	// Index key is in format
	//    <prefix>#<bucket>#<index name>#<value>#<entity id>
	// so all entries for a value are between the lookup key and the
	// lookup key followed by 255. MaxUint8 is never used as a chunk
	// length.
	end := make([]byte, len(lookupKey)+1)
	copy(end, lookupKey)
	end[len(end)-1] = math.MaxUint8

	it, err := db.Iterator(lookupKey, end)
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	defer it.Release()

	var keys [][]byte
	for {
		k, _, err := it.Next()
		if errors.ErrIteratorDone.Is(err) {
			return keys, nil
		}
		if err != nil {
			return nil, err
		}
		chunks, err := unpackNativeIdxKey(k)
		if err != nil {
			return nil, errors.Wrap(err, "unpack index key")
		}
		keys = append(keys, chunks[len(chunks)-1])
	}
}

// subtract returns all values present in minuend but not in subtrahend.
func subtract(minuend, subtrahend [][]byte) [][]byte {
	var res [][]byte
outer:
	for _, m := range minuend {
		for _, s := range subtrahend {
			if bytes.Equal(m, s) {
				continue outer
			}
		}
		res = append(res, m)
	}
	return res
}

// packNativeIdxKey serialize a native index key from a set of values to a
// single key. This process can be reversed using unpackNativeIdxKey function.
//
// Each chunk is prefixed with its length, encoded as a uint8 value. If a
// key is created from 3 chunks, "aaa", "" and "c", that key representation
// is:
//
//	_x.<3>aaa<0><1>c
func packNativeIdxKey(chunks [][]byte) ([]byte, error) {
	var size int
	for _, b := range chunks {
		size += len(b) + 1
	}
	res := make([]byte, 0, size+len(nativeIdxPrefix))
	res = append(res, nativeIdxPrefix...)

	for _, b := range chunks {
		// MaxUint8 is reserved for the search purpose.
		if len(b) > math.MaxUint8-1 {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "no chunk can be bigger than %d bytes", math.MaxUint8-1)
		}
		res = append(res, uint8(len(b)))
		res = append(res, b...)
	}
	return res, nil
}

func unpackNativeIdxKey(b []byte) ([][]byte, error) {
	if !bytes.HasPrefix(b, []byte(nativeIdxPrefix)) {
		return nil, errors.Wrap(errors.ErrInvalidInput, "not a native index key")
	}
	b = b[len(nativeIdxPrefix):]
	res := make([][]byte, 0, 4)
	for len(b) > 0 {
		size := int(b[0])
		if len(b) < 1+size {
			return nil, errors.Wrap(errors.ErrInvalidInput, "malformed offset")
		}
		res = append(res, b[1:1+size])
		b = b[1+size:]
	}
	return res, nil
}
