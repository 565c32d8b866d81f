package orm

import (
	"bytes"
	"reflect"
	"regexp"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// ModelBucket is implemented by buckets that operates on Models.
type ModelBucket interface {
	// One query the database for a single model instance. Lookup is done
	// by the primary index key. Result is loaded into given destination
	// model.
	// This method returns ErrNotFound if the entity does not exist in the
	// database.
	// If given model type cannot be used to contain stored entity,
	// ErrInvalidType is returned.
	One(db swap.ReadOnlyKVStore, key []byte, dest Model) error

	// Has returns nil if an entity with given primary key exists. It
	// returns ErrNotFound otherwise.
	Has(db swap.ReadOnlyKVStore, key []byte) error

	// Put saves given model in the database. All indexes are updated.
	Put(db swap.KVStore, key []byte, m Model) error

	// Delete removes an entity with given primary key from the database.
	// It returns ErrNotFound if an entity with given key does not exist.
	Delete(db swap.KVStore, key []byte) error

	// PrefixScan returns an iterator over all models whose primary key
	// starts with given prefix. A nil prefix iterates over the whole
	// bucket.
	PrefixScan(db swap.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error)

	// IndexScan returns an iterator over all models that were indexed by
	// the named index with given value.
	IndexScan(db swap.ReadOnlyKVStore, indexName string, value []byte) (ModelIterator, error)
}

// ModelBucketOption is implemented by any function that can configure
// ModelBucket during creation.
type ModelBucketOption func(mb *modelBucket)

// WithIndex configures the bucket to build an index with given name. All
// entities stored in the bucket are indexed using value returned by the
// indexer function. If an index is unique, there can be only one entity
// referenced per index value.
func WithIndex(name string, indexer Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.indexes[name] = newNativeIndex(mb.name, name, asMultiKeyIndexer(indexer), unique)
	}
}

// WithMultiKeyIndex works like WithIndex but the indexer can return more
// than one value for a single entity.
func WithMultiKeyIndex(name string, indexer MultiKeyIndexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.indexes[name] = newNativeIndex(mb.name, name, indexer, unique)
	}
}

// NewModelBucket returns a ModelBucket instance. Given model is the type
// stored in the bucket. Bucket name must be 3 to 10 characters long and
// contain only lower case letters and underscores.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	if !isBucketName(name) {
		panic("invalid bucket name: " + name)
	}
	tp := reflect.TypeOf(m)
	if tp.Kind() != reflect.Ptr {
		panic("model must be a pointer")
	}

	mb := &modelBucket{
		name:    name,
		prefix:  append([]byte(name), ':'),
		model:   tp.Elem(),
		indexes: make(map[string]*nativeIndex),
	}
	for _, fn := range opts {
		fn(mb)
	}
	return mb
}

type modelBucket struct {
	name    string
	prefix  []byte
	model   reflect.Type
	indexes map[string]*nativeIndex
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) dbKey(key []byte) []byte {
	res := make([]byte, 0, len(mb.prefix)+len(key))
	res = append(res, mb.prefix...)
	return append(res, key...)
}

func (mb *modelBucket) checkDest(dest Model) error {
	if reflect.TypeOf(dest) != reflect.PtrTo(mb.model) {
		return errors.Wrapf(errors.ErrInvalidType, "%T cannot be represented as %v", dest, mb.model)
	}
	return nil
}

func (mb *modelBucket) One(db swap.ReadOnlyKVStore, key []byte, dest Model) error {
	if err := mb.checkDest(dest); err != nil {
		return err
	}
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "db get")
	}
	if raw == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	if err := dest.Unmarshal(raw); err != nil {
		return errors.Wrapf(err, "unmarshal %s", mb.name)
	}
	return nil
}

func (mb *modelBucket) Has(db swap.ReadOnlyKVStore, key []byte) error {
	ok, err := db.Has(mb.dbKey(key))
	if err != nil {
		return errors.Wrap(err, "db has")
	}
	if !ok {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	return nil
}

func (mb *modelBucket) Put(db swap.KVStore, key []byte, m Model) error {
	if len(key) == 0 {
		return errors.Wrap(errors.ErrEmpty, "key")
	}
	if err := mb.checkDest(m); err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return errors.Wrapf(err, "invalid %s model", mb.name)
	}

	prev, err := mb.previous(db, key)
	if err != nil {
		return err
	}
	for name, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, m); err != nil {
			return errors.Wrapf(err, "cannot update %q index", name)
		}
	}

	raw, err := m.Marshal()
	if err != nil {
		return errors.Wrap(err, "marshal")
	}
	if err := db.Set(mb.dbKey(key), raw); err != nil {
		return errors.Wrap(err, "cannot store in the database")
	}
	return nil
}

func (mb *modelBucket) Delete(db swap.KVStore, key []byte) error {
	prev, err := mb.previous(db, key)
	if err != nil {
		return err
	}
	if prev == nil {
		return errors.Wrapf(errors.ErrNotFound, "%s %X", mb.name, key)
	}
	for name, idx := range mb.indexes {
		if err := idx.Update(db, key, prev, nil); err != nil {
			return errors.Wrapf(err, "cannot update %q index", name)
		}
	}
	if err := db.Delete(mb.dbKey(key)); err != nil {
		return errors.Wrap(err, "db delete")
	}
	return nil
}

// previous returns the stored model for the key or nil. It is loaded only
// when there are indexes to maintain, otherwise only the existence is
// checked and an empty instance returned.
func (mb *modelBucket) previous(db swap.ReadOnlyKVStore, key []byte) (Model, error) {
	raw, err := db.Get(mb.dbKey(key))
	if err != nil {
		return nil, errors.Wrap(err, "db get")
	}
	if raw == nil {
		return nil, nil
	}
	prev := reflect.New(mb.model).Interface().(Model)
	if len(mb.indexes) == 0 {
		return prev, nil
	}
	if err := prev.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s", mb.name)
	}
	return prev, nil
}

func (mb *modelBucket) PrefixScan(db swap.ReadOnlyKVStore, prefix []byte, reverse bool) (ModelIterator, error) {
	start := mb.dbKey(prefix)
	end := prefixEnd(start)

	var (
		it  swap.Iterator
		err error
	)
	if reverse {
		it, err = db.ReverseIterator(start, end)
	} else {
		it, err = db.Iterator(start, end)
	}
	if err != nil {
		return nil, errors.Wrap(err, "iterator")
	}
	return &prefixIterator{it: it, prefix: mb.prefix}, nil
}

func (mb *modelBucket) IndexScan(db swap.ReadOnlyKVStore, indexName string, value []byte) (ModelIterator, error) {
	idx, ok := mb.indexes[indexName]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidIndex, "no %q index in %s bucket", indexName, mb.name)
	}
	keys, err := idx.Keys(db, value)
	if err != nil {
		return nil, err
	}
	return &indexIterator{db: db, bucket: mb, keys: keys}, nil
}

// prefixEnd returns the smallest key that is greater than all keys with
// given prefix. It returns nil if there is no such key.
func prefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

type prefixIterator struct {
	it     swap.Iterator
	prefix []byte
}

func (p *prefixIterator) LoadNext(dest Model) ([]byte, error) {
	key, value, err := p.it.Next()
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(key, p.prefix) {
		return nil, errors.Wrapf(errors.ErrDatabase, "key %X outside of the bucket", key)
	}
	if err := dest.Unmarshal(value); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	return key[len(p.prefix):], nil
}

func (p *prefixIterator) Release() {
	p.it.Release()
}

type indexIterator struct {
	db     swap.ReadOnlyKVStore
	bucket *modelBucket
	keys   [][]byte
}

func (i *indexIterator) LoadNext(dest Model) ([]byte, error) {
	if len(i.keys) == 0 {
		return nil, errors.ErrIteratorDone
	}
	key := i.keys[0]
	i.keys = i.keys[1:]
	if err := i.bucket.One(i.db, key, dest); err != nil {
		return nil, errors.Wrap(err, "indexed model")
	}
	return key, nil
}

func (i *indexIterator) Release() {
	i.keys = nil
}
