package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/swap/errors"
)

// rangeBtree returns a snapshot of all items in [start, end) in the
// requested order. Both limits are optional.
func rangeBtree(bt *btree.BTree, start, end []byte, reverse bool) []keyer {
	var items []keyer
	insert := func(item btree.Item) bool {
		items = append(items, item.(keyer))
		return true
	}

	if start == nil && end == nil {
		bt.Ascend(insert)
	} else if start == nil { // end != nil
		bt.AscendLessThan(bkey{end}, insert)
	} else if end == nil { // start != nil
		bt.AscendGreaterOrEqual(bkey{start}, insert)
	} else { // both != nil
		bt.AscendRange(bkey{start}, bkey{end}, insert)
	}

	if reverse {
		for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
			items[i], items[j] = items[j], items[i]
		}
	}
	return items
}

// itemIter combines the items of a cache with the iterator of its parent
// store, taking into consideration overwrites and deletes.
type itemIter struct {
	items   []keyer
	idx     int
	reverse bool

	parent    Iterator
	parentKey []byte
	parentVal []byte
	hasParent bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []keyer, parent Iterator, reverse bool) (*itemIter, error) {
	iter := &itemIter{
		items:   items,
		reverse: reverse,
		parent:  parent,
	}
	if err := iter.advanceParent(); err != nil {
		parent.Release()
		return nil, err
	}
	return iter, nil
}

// Next implements Iterator. Deleted items shadow the parent value with the
// same key and are never returned.
func (i *itemIter) Next() (key, value []byte, err error) {
	for {
		hasOwn := i.idx < len(i.items)
		if !hasOwn && !i.hasParent {
			return nil, nil, errors.ErrIteratorDone
		}

		if !hasOwn {
			key, value = i.parentKey, i.parentVal
			if err := i.advanceParent(); err != nil {
				return nil, nil, err
			}
			return key, value, nil
		}

		own := i.items[i.idx]
		if i.hasParent {
			cmp := bytes.Compare(own.Key(), i.parentKey)
			if i.reverse {
				cmp = -cmp
			}
			if cmp > 0 {
				key, value = i.parentKey, i.parentVal
				if err := i.advanceParent(); err != nil {
					return nil, nil, err
				}
				return key, value, nil
			}
			if cmp == 0 {
				// our value overwrites the parent one
				if err := i.advanceParent(); err != nil {
					return nil, nil, err
				}
			}
		}

		i.idx++
		switch item := own.(type) {
		case setItem:
			return item.key, item.value, nil
		case deletedItem:
			continue
		default:
			return nil, nil, errors.Wrapf(errors.ErrDatabase, "unknown item in btree: %#v", own)
		}
	}
}

// Release implements Iterator.
func (i *itemIter) Release() {
	i.items = nil
	i.parent.Release()
}

func (i *itemIter) advanceParent() error {
	key, value, err := i.parent.Next()
	switch {
	case err == nil:
		i.parentKey, i.parentVal, i.hasParent = key, value, true
		return nil
	case errors.ErrIteratorDone.Is(err):
		i.parentKey, i.parentVal, i.hasParent = nil, nil, false
		return nil
	default:
		return err
	}
}
