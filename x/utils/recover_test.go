package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/store"
	"github.com/iov-one/swap/swaptest"
)

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	ctx := swap.WithLogger(context.Background(), log.NewTMLogger(&buf))
	h := swaptest.PanicHandler{Value: "vault drained"}
	r := NewRecovery()

	s := store.MemStore()
	msg := &swaptest.Msg{RoutePath: "escrow/take"}

	// Panic handler panics. Test the test tool.
	assert.Panics(t, func() { _, _ = h.Deliver(ctx, s, msg) })

	res, err := r.Deliver(ctx, s, msg, h)
	assert.Nil(t, res)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.True(t, strings.Contains(err.Error(), "escrow/take: vault drained"), err.Error())
	assert.Contains(t, buf.String(), "handler panic")
	assert.Contains(t, buf.String(), "path=escrow/take")

	// Errors are passed through untouched and nothing is logged.
	buf.Reset()
	_, err = r.Deliver(ctx, s, msg, &swaptest.Handler{DeliverErr: errors.ErrHuman})
	assert.True(t, errors.ErrHuman.Is(err))
	assert.Empty(t, buf.String())
}
