package custody

import (
	"context"
	"testing"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/gconf"
	"github.com/iov-one/swap/swaptest"
	"github.com/iov-one/swap/swaptest/assert"
)

type testRouter map[string]swap.Handler

func (r testRouter) Handle(path string, h swap.Handler) {
	r[path] = h
}

func TestTransferHandler(t *testing.T) {
	alice := swaptest.NewCondition()
	bob := swaptest.NewCondition()

	cases := map[string]struct {
		signers   []swap.Condition
		msg       swap.Msg
		wantErr   *errors.Error
		wantAlice uint64
		wantBob   uint64
	}{
		"success": {
			signers:   []swap.Condition{alice},
			msg:       &TransferMsg{Sender: alice.Address(), Recipient: bob.Address(), Amount: asset.NewEntry(40, "ABC")},
			wantAlice: 60,
			wantBob:   40,
		},
		"sender must sign": {
			signers:   []swap.Condition{bob},
			msg:       &TransferMsg{Sender: alice.Address(), Recipient: bob.Address(), Amount: asset.NewEntry(40, "ABC")},
			wantErr:   errors.ErrUnauthorized,
			wantAlice: 100,
		},
		"invalid amount": {
			signers:   []swap.Condition{alice},
			msg:       &TransferMsg{Sender: alice.Address(), Recipient: bob.Address(), Amount: asset.NewEntry(0, "ABC")},
			wantErr:   errors.ErrInvalidAmount,
			wantAlice: 100,
		},
		"insufficient funds": {
			signers:   []swap.Condition{alice},
			msg:       &TransferMsg{Sender: alice.Address(), Recipient: bob.Address(), Amount: asset.NewEntry(101, "ABC")},
			wantErr:   errors.ErrInsufficientAmount,
			wantAlice: 100,
		},
		"wrong message": {
			signers:   []swap.Condition{alice},
			msg:       &UpdateConfigurationMsg{Patch: &Configuration{}},
			wantErr:   errors.ErrInvalidMsg,
			wantAlice: 100,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c, db := newTestController(t, 0)
			from, err := c.CreateAccount(db, alice.Address(), "ABC", alice.Address())
			assert.Nil(t, err)
			assert.Nil(t, c.Issue(db, from, 100))

			auth := &swaptest.CtxAuth{Key: "auth"}
			r := make(testRouter)
			RegisterRoutes(r, auth, c)

			ctx := auth.SetConditions(context.Background(), tc.signers...)
			h := r[pathTransferMsg]
			cache := db.CacheWrap()
			_, err = h.Deliver(ctx, cache, tc.msg)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if err == nil {
				assert.Nil(t, cache.Write())
			} else {
				cache.Discard()
			}

			got, _ := c.Balance(db, from)
			assert.Equal(t, tc.wantAlice, got)
			got, _ = c.Balance(db, AccountAddress(bob.Address(), "ABC"))
			assert.Equal(t, tc.wantBob, got)
		})
	}
}

func TestUpdateConfiguration(t *testing.T) {
	owner := swaptest.NewCondition()
	c, db := newTestController(t, 0)
	assert.Nil(t, gconf.Save(db, confPkg, &Configuration{Owner: owner.Address(), AccountDeposit: 1}))

	auth := &swaptest.CtxAuth{Key: "auth"}
	r := make(testRouter)
	RegisterRoutes(r, auth, c)
	h := r[pathUpdateConfigurationMsg]

	msg := &UpdateConfigurationMsg{Patch: &Configuration{AccountDeposit: 9}}
	if _, err := h.Deliver(context.Background(), db, msg); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := auth.SetConditions(context.Background(), owner)
	_, err := h.Deliver(ctx, db, msg)
	assert.Nil(t, err)

	conf, err := loadConf(db)
	assert.Nil(t, err)
	assert.Equal(t, uint64(9), conf.AccountDeposit)
	assert.Equal(t, owner.Address(), conf.Owner)
}
