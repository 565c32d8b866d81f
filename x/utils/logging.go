package utils

import (
	"time"

	"github.com/iov-one/swap"
)

// Logging is a decorator to log messages as they pass through
type Logging struct{}

var _ swap.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Deliver logs error -> error, success -> info. The logger passed down the
// stack carries the message path.
func (r Logging) Deliver(ctx swap.Context, store swap.KVStore, msg swap.Msg, next swap.Handler) (*swap.DeliverResult, error) {
	ctx = swap.WithLogInfo(ctx, "path", msg.Path())
	start := time.Now()
	res, err := next.Deliver(ctx, store, msg)
	var resLog string
	if err == nil {
		resLog = res.Log
	}
	logDuration(ctx, start, resLog, err)
	return res, err
}

// logDuration writes information about the time and result to the logger
func logDuration(ctx swap.Context, start time.Time, msg string, err error) {
	delta := time.Since(start)
	logger := swap.GetLogger(ctx).With("duration", delta/time.Microsecond)

	// Although message can be empty, we still want to emit a log entry
	// because it contains other relevant information beside the message.
	if err != nil {
		logger.With("err", err).Error(msg)
	} else {
		logger.Info(msg)
	}
}
