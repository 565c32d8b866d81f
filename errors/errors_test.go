package errors

import (
	stdlib "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func TestCause(t *testing.T) {
	std := stdlib.New("this is a stdlib error")

	cases := map[string]struct {
		err  error
		root error
	}{
		"Errors are self-causing": {
			err:  ErrNotFound,
			root: ErrNotFound,
		},
		"Wrap reveals root cause": {
			err:  Wrap(ErrNotFound, "foo"),
			root: ErrNotFound,
		},
		"Cause works for stderr as root": {
			err:  Wrap(std, "Some helpful text"),
			root: std,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := errors.Cause(tc.err); got != tc.root {
				t.Fatal("unexpected result")
			}
		})
	}
}

func TestErrorIs(t *testing.T) {
	cases := map[string]struct {
		a      *Error
		b      error
		wantIs bool
	}{
		"instance of the same error": {
			a:      ErrNotFound,
			b:      ErrNotFound,
			wantIs: true,
		},
		"two different coded errors": {
			a:      ErrNotFound,
			b:      ErrExpired,
			wantIs: false,
		},
		"successful comparison to a wrapped error": {
			a:      ErrExceedsRemaining,
			b:      Wrapf(Wrap(ErrExceedsRemaining, "take"), "escrow %d", 4),
			wantIs: true,
		},
		"unsuccessful comparison to a wrapped error": {
			a:      ErrNotFound,
			b:      errors.Wrap(ErrOverflow, "too big"),
			wantIs: false,
		},
		"not equal to stdlib error": {
			a:      ErrNotFound,
			b:      fmt.Errorf("stdlib error"),
			wantIs: false,
		},
		"nil is nil": {
			a:      nil,
			b:      nil,
			wantIs: true,
		},
		"nil is not an error": {
			a:      nil,
			b:      ErrNotExpired,
			wantIs: false,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := tc.a.Is(tc.b); got != tc.wantIs {
				t.Fatalf("unexpected result - got:%v want: %v", got, tc.wantIs)
			}
		})
	}
}

func TestStdlibCompatibility(t *testing.T) {
	err := Wrap(ErrBundleLength, "take")
	if !stdlib.Is(err, ErrBundleLength) {
		t.Fatal("stdlib errors.Is must find the root error")
	}
	if stdlib.Is(err, ErrAssetMismatch) {
		t.Fatal("stdlib errors.Is matched a different root error")
	}
}

func TestRegisterDuplicatedCode(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("registering the same code twice must panic")
		}
	}()
	Register(ErrAssetMismatch.Code(), "another description")
}

func TestCode(t *testing.T) {
	cases := map[string]struct {
		err  error
		want uint32
	}{
		"nil":            {err: nil, want: 0},
		"root":           {err: ErrUnauthorizedAuthority, want: 20},
		"wrapped":        {err: Wrap(Wrap(ErrNotExpired, "a"), "b"), want: 21},
		"stdlib":         {err: fmt.Errorf("x"), want: 1},
		"wrapped stdlib": {err: Wrap(fmt.Errorf("x"), "y"), want: 1},
		"insufficient":   {err: ErrInsufficientAmount.New("vault"), want: 12},
		"invalid amount": {err: ErrInvalidAmount.Newf("amount %d", 0), want: 13},
		"overflow":       {err: ErrOverflow, want: 16},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := Code(tc.err); got != tc.want {
				t.Fatalf("want %d, got %d", tc.want, got)
			}
		})
	}
}

func TestRecover(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err)
		panic("boom")
	}
	err := fn()
	if !ErrPanic.Is(err) {
		t.Fatalf("want panic error, got %+v", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Fatalf("panic message lost: %s", err)
	}
}

func TestWrapMessage(t *testing.T) {
	err := Wrap(Wrap(ErrNotFound, "escrow"), "take")
	if got, want := err.Error(), "take: escrow: not found"; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
	if Wrap(nil, "nothing") != nil {
		t.Fatal("wrapping nil must return nil")
	}
	if !strings.Contains(fmt.Sprintf("%+v", err), "errors_test.go") {
		t.Fatal("stack trace must point to the creation place")
	}
}
