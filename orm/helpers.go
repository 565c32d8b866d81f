package orm

import (
	"reflect"

	"github.com/iov-one/swap/errors"
)

// ToSlice loads all models from the iterator into a newly allocated slice.
// The slice element type is defined by given prototype. Iterator is always
// released.
func ToSlice(it ModelIterator, proto Model) ([][]byte, []Model, error) {
	defer it.Release()

	tp := reflect.TypeOf(proto)
	if tp.Kind() != reflect.Ptr {
		return nil, nil, errors.Wrap(errors.ErrHuman, "prototype must be a pointer")
	}

	var (
		keys   [][]byte
		models []Model
	)
	for {
		m := reflect.New(tp.Elem()).Interface().(Model)
		key, err := it.LoadNext(m)
		switch {
		case err == nil:
			keys = append(keys, key)
			models = append(models, m)
		case errors.ErrIteratorDone.Is(err):
			return keys, models, nil
		default:
			return nil, nil, err
		}
	}
}
