package custody

import (
	"context"
	"testing"

	"github.com/iov-one/swap/authority"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/swaptest"
	"github.com/iov-one/swap/swaptest/assert"
)

func TestExecutorWithDerivedAuthority(t *testing.T) {
	c, db := newTestController(t, 3)
	exec := NewExecutor(c)
	ctx := context.Background()

	maker := swaptest.NewCondition().Address()
	taker := swaptest.NewCondition().Address()
	assert.Nil(t, c.Fund(db, maker, 10))
	assert.Nil(t, c.Fund(db, taker, 10))

	vaultOwner, bump, err := authority.Derive("escrow", maker, 1)
	assert.Nil(t, err)
	vault, err := exec.CreateAccount(db, vaultOwner, "ABC", maker)
	assert.Nil(t, err)
	assert.Nil(t, c.Issue(db, vault, 100))
	takerAcc, err := exec.EnsureAccount(db, taker, "ABC", taker)
	assert.Nil(t, err)

	// A proof for a different seed cannot be created.
	if _, err := authority.Authorize("escrow", maker, 2, bump, vaultOwner); !errors.ErrUnauthorizedAuthority.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	// Signatures of the maker do not own the vault.
	makerSig := Signers(swaptest.SignedBy(swaptest.NewCondition()))
	if err := exec.Transfer(ctx, db, "ABC", vault, takerAcc, 1, makerSig); !errors.ErrUnauthorized.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}

	proof, err := authority.Authorize("escrow", maker, 1, bump, vaultOwner)
	assert.Nil(t, err)
	assert.Nil(t, exec.Transfer(ctx, db, "ABC", vault, takerAcc, 30, proof))

	got, _ := exec.Balance(db, takerAcc)
	assert.Equal(t, uint64(30), got)

	moved, err := exec.CloseAndReclaim(ctx, db, vault, maker, maker, proof)
	assert.Nil(t, err)
	assert.Equal(t, uint64(70), moved)

	got, _ = exec.Balance(db, AccountAddress(maker, "ABC"))
	assert.Equal(t, uint64(70), got)

	// Vault deposit returned, maker paid for its own account.
	reserve, _ := c.Reserve(db, maker)
	assert.Equal(t, uint64(10-3-3+3), reserve)

	if _, err := exec.Account(db, vault); !errors.ErrNotFound.Is(err) {
		t.Fatalf("vault not closed: %v", err)
	}
}

func TestExecutorUnknownMint(t *testing.T) {
	c, db := newTestController(t, 0)
	exec := NewExecutor(c)
	a := swaptest.NewCondition().Address()
	err := exec.Transfer(context.Background(), db, "NOPE", a, a, 1, allow{})
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}
