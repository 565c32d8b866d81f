package swaptest

import (
	"context"
	"fmt"

	"github.com/iov-one/swap"
)

// Auth authenticates a fixed list of signers, main signer first. It
// satisfies x.Authenticator and, through Authorizes, the custody authority
// contract, so one value can drive both handlers and controllers.
type Auth []swap.Condition

// SignedBy returns an authenticator reporting given signers.
func SignedBy(signers ...swap.Condition) Auth {
	return Auth(signers)
}

func (a Auth) GetConditions(swap.Context) []swap.Condition {
	return a
}

func (a Auth) HasAddress(_ swap.Context, addr swap.Address) bool {
	for _, c := range a {
		if addr.Equals(c.Address()) {
			return true
		}
	}
	return false
}

// Authorizes reports whether owner is one of the signers.
func (a Auth) Authorizes(ctx swap.Context, owner swap.Address) bool {
	return a.HasAddress(ctx, owner)
}

// CtxAuth keeps the signers in the context, the way the signature
// decorator does. Authenticators with different keys do not see each
// other's signers.
type CtxAuth struct {
	Key string
}

type ctxAuthKey string

// SetConditions returns a context signed by given conditions.
func (a *CtxAuth) SetConditions(ctx swap.Context, signers ...swap.Condition) swap.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), signers)
}

func (a *CtxAuth) GetConditions(ctx swap.Context) []swap.Condition {
	switch v := ctx.Value(ctxAuthKey(a.Key)).(type) {
	case nil:
		return nil
	case []swap.Condition:
		return v
	default:
		panic(fmt.Sprintf("signers stored as %T", v))
	}
}

func (a *CtxAuth) HasAddress(ctx swap.Context, addr swap.Address) bool {
	return Auth(a.GetConditions(ctx)).HasAddress(ctx, addr)
}

// Authorizes reports whether owner signed the context.
func (a *CtxAuth) Authorizes(ctx swap.Context, owner swap.Address) bool {
	return a.HasAddress(ctx, owner)
}
