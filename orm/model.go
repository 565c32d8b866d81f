package orm

import (
	"github.com/iov-one/swap"
)

// Validater is implemented by every stored entity. A model that does not
// validate is never written.
type Validater interface {
	Validate() error
}

// Model is implemented by any entity that can be stored using ModelBucket.
type Model interface {
	swap.Persistent
	Validater
}

// ModelIterator loads models one by one.
type ModelIterator interface {
	// LoadNext loads the next model into given destination and returns
	// its key. It returns ErrIteratorDone when there is no more data.
	LoadNext(dest Model) (key []byte, err error)

	// Release must be called when the iterator is no longer used.
	Release()
}
