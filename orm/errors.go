package orm

import (
	"github.com/iov-one/swap/errors"
)

// ErrInvalidIndex is returned when an index specified is invalid
var ErrInvalidIndex = errors.Register(100, "invalid index")
