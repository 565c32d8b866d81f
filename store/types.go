package store

import "github.com/iov-one/swap"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = swap.ReadOnlyKVStore
	SetDeleter       = swap.SetDeleter
	KVStore          = swap.KVStore
	Batch            = swap.Batch
	Iterator         = swap.Iterator
	CacheableKVStore = swap.CacheableKVStore
	KVCacheWrap      = swap.KVCacheWrap
	CommitKVStore    = swap.CommitKVStore
	CommitID         = swap.CommitID
)
