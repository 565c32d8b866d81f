package assert

import (
	"reflect"

	"github.com/iov-one/swap/errors"
)

// Tester is the part of testing.TB used by the assertions.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
}

// Nil fails the test unless value is nil. Errors are printed with %+v to
// show their stack trace.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want a nil value, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	}
	return false
}

// Equal fails the test unless both values are deeply equal.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("values not equal\nwant %T %v\n got %T %v", want, want, got, got)
	}
}

// Panics fails the test unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected")
		}
	}()
	fn()
}

// ErrIs fails the test unless got is want or wraps it. A nil want expects
// no error.
func ErrIs(t Tester, want *errors.Error, got error) {
	t.Helper()
	if !want.Is(got) {
		t.Fatalf("want %v error, got %+v", want, got)
	}
}

// FieldError fails the test unless err carries exactly one error for the
// named field and that error is want. A nil want expects no error for the
// field.
func FieldError(t Tester, err error, fieldName string, want *errors.Error) {
	t.Helper()
	errs := errors.FieldErrors(err, fieldName)
	for i, e := range errs {
		t.Logf("%s error %d: %v", fieldName, i+1, e)
	}
	switch {
	case want == nil && len(errs) != 0:
		t.Fatalf("want no %s error, got %d", fieldName, len(errs))
	case want == nil:
	case len(errs) == 0:
		t.Fatalf("no %s error found", fieldName)
	case len(errs) > 1:
		t.Fatalf("want one %s error, got %d", fieldName, len(errs))
	case !want.Is(errs[0]):
		t.Fatalf("want %v for %s, got %v", want, fieldName, errs[0])
	}
}
