package escrow

import (
	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
)

// now returns the current time as declared for the operation.
func now(ctx swap.Context) (swap.UnixTime, error) {
	t, err := swap.BlockTime(ctx)
	if err != nil {
		return 0, err
	}
	return swap.AsUnixTime(t), nil
}

// checkDeadline fails with ErrExpired if the escrow can no longer be taken.
// The deadline is exclusive for take.
func checkDeadline(ctx swap.Context, e *Escrow) error {
	if e.Kind != TimeBoxed {
		return nil
	}
	t, err := now(ctx)
	if err != nil {
		return err
	}
	if t >= e.ExpiresAt {
		return errors.Wrapf(errors.ErrExpired, "escrow expired at %s", e.ExpiresAt)
	}
	return nil
}

// checkRefundable fails with ErrNotExpired if a time boxed escrow deadline
// has not passed yet.
func checkRefundable(ctx swap.Context, e *Escrow) error {
	if e.Kind != TimeBoxed {
		return nil
	}
	t, err := now(ctx)
	if err != nil {
		return err
	}
	if t < e.ExpiresAt {
		return errors.Wrapf(errors.ErrNotExpired, "escrow expires at %s", e.ExpiresAt)
	}
	return nil
}
