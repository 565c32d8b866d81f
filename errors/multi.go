package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// If none or only one non nil error is provided, the result is the same as
// the input. Otherwise a multi error is returned. Its Cause is the first
// error, so that it reports the same code as a fail fast validation would.
func Append(errs ...error) error {
	var flat []error
	for _, e := range errs {
		if isNilErr(e) {
			continue
		}
		if u, ok := e.(unpacker); ok {
			flat = append(flat, u.Unpack()...)
		} else {
			flat = append(flat, e)
		}
	}

	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	default:
		return multiErr(flat)
	}
}

type multiErr []error

func (errs multiErr) Error() string {
	points := make([]string, len(errs))
	for i, err := range errs {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s\n", len(errs), strings.Join(points, "\n\t"))
}

// Cause implements causer interface. The first error is the cause.
func (errs multiErr) Cause() error {
	return errs[0]
}

// Unpack implements unpacker interface.
func (errs multiErr) Unpack() []error {
	return errs
}

// unpacker is implemented by errors grouping more than one error instance.
type unpacker interface {
	Unpack() []error
}
