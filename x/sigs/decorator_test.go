package sigs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/crypto"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/store"
	"github.com/iov-one/swap/swaptest"
)

// recordingHandler remembers the message and the signers it was called with.
type recordingHandler struct {
	msg     swap.Msg
	signers []swap.Condition
}

func (h *recordingHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	h.msg = msg
	h.signers = Authenticate{}.GetConditions(ctx)
	return &swap.DeliverResult{}, nil
}

func TestDecorator(t *testing.T) {
	kv := store.MemStore()
	chainID := "deco-rate"
	ctx := swap.WithChainID(context.Background(), chainID)
	priv := crypto.GenPrivKeyEd25519()

	payload := &swaptest.Msg{RoutePath: "test/msg", Serialized: []byte("data")}

	cases := map[string]struct {
		deco    Decorator
		msg     func() swap.Msg
		wantErr *errors.Error
		signed  int
	}{
		"signed envelope is unwrapped": {
			deco: NewDecorator(),
			msg: func() swap.Msg {
				env := NewEnvelope(payload)
				require.NoError(t, env.Sign(priv, chainID, 0))
				return env
			},
			signed: 1,
		},
		"replayed sequence": {
			deco: NewDecorator(),
			msg: func() swap.Msg {
				env := NewEnvelope(payload)
				require.NoError(t, env.Sign(priv, chainID, 0))
				return env
			},
			wantErr: ErrInvalidSequence,
		},
		"unsigned envelope": {
			deco:    NewDecorator(),
			msg:     func() swap.Msg { return NewEnvelope(payload) },
			wantErr: errors.ErrUnauthorized,
		},
		"nested envelope": {
			deco: NewDecorator(),
			msg: func() swap.Msg {
				env := NewEnvelope(NewEnvelope(payload))
				require.NoError(t, env.Sign(priv, chainID, 1))
				return env
			},
			wantErr: errors.ErrInvalidMsg,
		},
		"plain message passes through": {
			deco: NewDecorator(),
			msg:  func() swap.Msg { return payload },
		},
	}

	// order matters because of the sequence
	for _, name := range []string{
		"signed envelope is unwrapped",
		"replayed sequence",
		"unsigned envelope",
		"nested envelope",
		"plain message passes through",
	} {
		tc := cases[name]
		t.Run(name, func(t *testing.T) {
			h := &recordingHandler{}
			_, err := tc.deco.Deliver(ctx, kv, tc.msg(), h)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.wantErr != nil {
				assert.Nil(t, h.msg)
				return
			}
			assert.Equal(t, payload, h.msg)
			assert.Len(t, h.signers, tc.signed)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	a := Authenticate{}
	ctx := context.Background()
	c1 := swaptest.NewCondition()
	c2 := swaptest.NewCondition()

	assert.Empty(t, a.GetConditions(ctx))
	assert.False(t, a.HasAddress(ctx, c1.Address()))

	ctx = withSigners(ctx, []swap.Condition{c1})
	assert.Equal(t, []swap.Condition{c1}, a.GetConditions(ctx))
	assert.True(t, a.HasAddress(ctx, c1.Address()))
	assert.False(t, a.HasAddress(ctx, c2.Address()))
}
