package custody

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/authority"
	"github.com/iov-one/swap/x"
)

// Authority is presented with every operation that moves funds out of an
// account. It must authorize the owner of that account.
type Authority interface {
	Authorizes(ctx swap.Context, owner swap.Address) bool
}

var _ Authority = (*authority.Proof)(nil)

// Signers returns an Authority that authorizes all owners that signed the
// current message.
func Signers(auth x.Authenticator) Authority {
	return signers{auth: auth}
}

type signers struct {
	auth x.Authenticator
}

func (s signers) Authorizes(ctx swap.Context, owner swap.Address) bool {
	return s.auth.HasAddress(ctx, owner)
}
