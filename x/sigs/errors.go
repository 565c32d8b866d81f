package sigs

import (
	"github.com/iov-one/swap/errors"
)

// ErrInvalidSequence is returned when a signature sequence does not match
// the stored one.
var ErrInvalidSequence = errors.Register(120, "invalid sequence number")
