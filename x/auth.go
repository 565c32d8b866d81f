package x

import (
	"github.com/iov-one/swap"
)

// Authenticator reveals who signed the message being processed. Handlers
// receive it in their constructor and never read signatures directly.
type Authenticator interface {
	// GetConditions returns the conditions satisfied by the message
	// signatures, main signer first.
	GetConditions(swap.Context) []swap.Condition
	// HasAddress reports whether any satisfied condition has this address.
	HasAddress(swap.Context, swap.Address) bool
}

// MultiAuth merges the view of several authenticators.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth(nil)

// ChainAuth combines authenticators. Conditions are reported in the order
// the authenticators are given.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

func (m MultiAuth) GetConditions(ctx swap.Context) []swap.Condition {
	var res []swap.Condition
	for _, impl := range m {
		res = append(res, impl.GetConditions(ctx)...)
	}
	return res
}

func (m MultiAuth) HasAddress(ctx swap.Context, addr swap.Address) bool {
	for _, impl := range m {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first satisfied condition or nil.
func MainSigner(ctx swap.Context, auth Authenticator) swap.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}
