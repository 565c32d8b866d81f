package sigs

import (
	"context"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/x"
)

type contextKey int // local to the sigs module

const (
	contextKeySigners contextKey = iota
)

// withSigners is a private method, as only this module
// can add a signer
func withSigners(ctx swap.Context, signers []swap.Condition) swap.Context {
	return context.WithValue(ctx, contextKeySigners, signers)
}

// Authenticate exposes conditions of verified signers.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns who signed the current Context.
// May be empty
func (a Authenticate) GetConditions(ctx swap.Context) []swap.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeySigners).([]swap.Condition)
	return val
}

// HasAddress returns true if any signer of the current Context has given
// address.
func (a Authenticate) HasAddress(ctx swap.Context, addr swap.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}
