package sigs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/store"
	"github.com/iov-one/swap/swaptest"
)

type routes map[string]swap.Handler

func (r routes) Handle(path string, h swap.Handler) { r[path] = h }

func TestBumpSequence(t *testing.T) {
	kv := store.MemStore()
	chainID := "bump-the-seq"
	priv := swaptest.NewKey()
	pub := priv.PublicKey()

	r := routes{}
	RegisterRoutes(r, Authenticate{})
	h := r[pathBumpSequenceMsg]
	require.NotNil(t, h)
	stack := swaptest.Decorate(h, NewDecorator())

	deliver := func(seq int64, incr uint32) error {
		ctx := swap.WithChainID(context.Background(), chainID)
		env := NewEnvelope(&BumpSequenceMsg{Increment: incr})
		require.NoError(t, env.Sign(priv, chainID, seq))
		_, err := stack.Deliver(ctx, kv, env)
		return err
	}

	require.NoError(t, deliver(0, 1))
	n, err := NextNonce(kv, pub.Address())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, deliver(1, 10))
	n, err = NextNonce(kv, pub.Address())
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	assert.True(t, errors.ErrInvalidMsg.Is(deliver(11, 0)))
	assert.True(t, errors.ErrInvalidMsg.Is(deliver(12, maxSequenceIncrement+1)))

	// unsigned calls have no main signer
	_, err = h.Deliver(context.Background(), kv, &BumpSequenceMsg{Increment: 2})
	assert.True(t, errors.ErrUnauthorized.Is(err))
}
