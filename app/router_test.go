package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/store"
	"github.com/iov-one/swap/swaptest"
)

func TestRouter(t *testing.T) {
	r := NewRouter()
	good, bad, missing := "test/good", "test/bad", "test/missing"

	counter := &swaptest.Handler{}
	r.Handle(good, counter)
	r.Handle(bad, &swaptest.Handler{DeliverErr: errors.ErrHuman})

	// make sure invalid registrations panic
	assert.Panics(t, func() { r.Handle(good, counter) })
	assert.Panics(t, func() { r.Handle("l:7", counter) })

	ctx := context.Background()
	db := store.MemStore()

	_, err := r.Deliver(ctx, db, &swaptest.Msg{RoutePath: good})
	assert.NoError(t, err)
	assert.Equal(t, 1, counter.CallCount())

	_, err = r.Deliver(ctx, db, &swaptest.Msg{RoutePath: bad})
	assert.True(t, errors.ErrHuman.Is(err))
	assert.Equal(t, 1, counter.CallCount())

	_, err = r.Deliver(ctx, db, &swaptest.Msg{RoutePath: missing})
	assert.True(t, errors.ErrNotFound.Is(err))
	assert.Equal(t, 1, counter.CallCount())
}
