package assert

import (
	"fmt"
	"testing"

	"github.com/iov-one/swap/errors"
)

func TestErrIs(t *testing.T) {
	cases := map[string]struct {
		want     *errors.Error
		got      error
		wantFail bool
	}{
		"same error": {
			want: errors.ErrExpired,
			got:  errors.ErrExpired,
		},
		"wrapped": {
			want: errors.ErrInsufficientAmount,
			got:  errors.Wrap(errors.ErrInsufficientAmount, "vault AAA"),
		},
		"no error expected": {
			want:     nil,
			got:      errors.ErrNotExpired,
			wantFail: true,
		},
		"both nil": {},
		"other error": {
			want:     errors.ErrAssetMismatch,
			got:      errors.ErrBundleLength,
			wantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{}
			ErrIs(mock, tc.want, tc.got)
			if failed := mock.failcalls > 0; failed != tc.wantFail {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestFieldError(t *testing.T) {
	cases := map[string]struct {
		err      error
		name     string
		want     *errors.Error
		wantFail bool
	}{
		"single error found": {
			err:  errors.Field("Offered", errors.ErrInvalidAmount, "zero"),
			name: "Offered",
			want: errors.ErrInvalidAmount,
		},
		"no error for another field": {
			err:  errors.Field("Offered", errors.ErrInvalidAmount, "zero"),
			name: "Expected",
		},
		"unexpected error": {
			err:      errors.Field("Offered", errors.ErrInvalidAmount, "zero"),
			name:     "Offered",
			wantFail: true,
		},
		"two errors for one field": {
			err: errors.Append(
				errors.Field("Offered", errors.ErrInvalidAmount, "zero"),
				errors.Field("Offered", errors.ErrDuplicate, "AAA"),
			),
			name:     "Offered",
			want:     errors.ErrInvalidAmount,
			wantFail: true,
		},
		"wrong error": {
			err:      errors.Field("Duration", errors.ErrInvalidInput, "negative"),
			name:     "Duration",
			want:     errors.ErrExpired,
			wantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{}
			FieldError(mock, tc.err, tc.name, tc.want)
			if failed := mock.failcalls > 0; failed != tc.wantFail {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestNil(t *testing.T) {
	var (
		nilErr   error
		nilSlice []byte
		nilPtr   *tmock
	)
	for i, v := range []interface{}{nil, nilErr, nilSlice, nilPtr} {
		mock := &tmock{}
		Nil(mock, v)
		if mock.failcalls != 0 {
			t.Fatalf("value %d: nil not recognized", i)
		}
	}
	for i, v := range []interface{}{0, "", []byte{}, errors.ErrEmpty} {
		mock := &tmock{}
		Nil(mock, v)
		if mock.failcalls == 0 {
			t.Fatalf("value %d: %v reported as nil", i, v)
		}
	}
}

// tmock counts failures instead of stopping the test.
type tmock struct {
	failcalls int
	logs      []string
}

func (t *tmock) Helper() {}

func (t *tmock) Fatal(args ...interface{}) {
	t.logs = append(t.logs, fmt.Sprint(args...))
	t.failcalls++
}

func (t *tmock) Fatalf(s string, args ...interface{}) {
	t.logs = append(t.logs, fmt.Sprintf(s, args...))
	t.failcalls++
}

func (t *tmock) Logf(s string, args ...interface{}) {
	t.logs = append(t.logs, fmt.Sprintf(s, args...))
}
