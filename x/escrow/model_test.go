package escrow

import (
	"testing"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/swaptest"
	"github.com/iov-one/swap/swaptest/assert"
)

func TestEscrowValidate(t *testing.T) {
	maker := swaptest.NewCondition().Address()
	vault := swaptest.NewCondition().Address()
	one := asset.Bundle{asset.NewEntry(10, "AAA")}
	pay := asset.Bundle{asset.NewEntry(2, "BBB")}

	cases := map[string]struct {
		escrow  Escrow
		field   string
		wantErr *errors.Error
	}{
		"valid full fill": {
			escrow: Escrow{Kind: FullFill, Maker: maker, Offered: one, Expected: pay, Authority: vault},
		},
		"valid partial fill": {
			escrow: Escrow{Kind: PartialFill, Maker: maker, Offered: one, Expected: pay, Authority: vault, Total: 10, Remaining: 3},
		},
		"valid time boxed": {
			escrow: Escrow{Kind: TimeBoxed, Maker: maker, Offered: one, Expected: pay, Authority: vault, ExpiresAt: 1000},
		},
		"valid multi asset": {
			escrow: Escrow{Kind: MultiAsset, Maker: maker, Offered: asset.Bundle{asset.NewEntry(1, "AAA"), asset.NewEntry(1, "BBB")}, Expected: pay, Authority: vault},
		},
		"unknown kind": {
			escrow:  Escrow{Kind: 9, Maker: maker, Offered: one, Expected: pay, Authority: vault},
			field:   "Kind",
			wantErr: errors.ErrInvalidInput,
		},
		"missing maker": {
			escrow:  Escrow{Kind: FullFill, Offered: one, Expected: pay, Authority: vault},
			field:   "Maker",
			wantErr: errors.ErrInvalidInput,
		},
		"fulfilled partial": {
			escrow:  Escrow{Kind: PartialFill, Maker: maker, Offered: one, Expected: pay, Authority: vault, Total: 10, Remaining: 0},
			field:   "Remaining",
			wantErr: errors.ErrInvalidState,
		},
		"remaining above total": {
			escrow:  Escrow{Kind: PartialFill, Maker: maker, Offered: one, Expected: pay, Authority: vault, Total: 10, Remaining: 11},
			field:   "Remaining",
			wantErr: errors.ErrInvalidState,
		},
		"total not deposited": {
			escrow:  Escrow{Kind: PartialFill, Maker: maker, Offered: one, Expected: pay, Authority: vault, Total: 9, Remaining: 9},
			field:   "Total",
			wantErr: errors.ErrInvalidState,
		},
		"deadline missing": {
			escrow:  Escrow{Kind: TimeBoxed, Maker: maker, Offered: one, Expected: pay, Authority: vault},
			field:   "ExpiresAt",
			wantErr: errors.ErrEmpty,
		},
		"deadline not used": {
			escrow:  Escrow{Kind: FullFill, Maker: maker, Offered: one, Expected: pay, Authority: vault, ExpiresAt: 5},
			field:   "ExpiresAt",
			wantErr: errors.ErrInvalidState,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.escrow.Validate()
			if tc.wantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.FieldError(t, err, tc.field, tc.wantErr)
		})
	}
}

func TestEscrowID(t *testing.T) {
	maker := swaptest.NewCondition().Address()
	key := Key(maker, 1<<40+3)

	gotMaker, gotSeed, err := SplitKey(key)
	assert.Nil(t, err)
	assert.Equal(t, maker, gotMaker)
	assert.Equal(t, uint64(1<<40+3), gotSeed)

	parsed, err := ParseID(FormatID(key))
	assert.Nil(t, err)
	assert.Equal(t, key, parsed)

	for _, bad := range []string{"", "nomaker", "/1", maker.String() + "/x", "zz/1"} {
		if _, err := ParseID(bad); err == nil {
			t.Fatalf("%q: want error", bad)
		}
	}
	if _, _, err := SplitKey([]byte("short")); !errors.ErrInvalidInput.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestKind(t *testing.T) {
	for _, k := range []Kind{FullFill, PartialFill, MultiAsset, TimeBoxed} {
		got, err := ParseKind(k.String())
		assert.Nil(t, err)
		assert.Equal(t, k, got)
	}
	if _, err := ParseKind("auction"); !errors.ErrInvalidInput.Is(err) {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestVaults(t *testing.T) {
	e := Escrow{
		Authority: swaptest.NewCondition().Address(),
		Offered:   asset.Bundle{asset.NewEntry(1, "AAA"), asset.NewEntry(1, "BBB")},
	}
	vaults := e.Vaults()
	assert.Equal(t, 2, len(vaults))
	if vaults[0].Equals(vaults[1]) {
		t.Fatal("vaults must be distinct")
	}
	assert.Equal(t, accountOf(e.Authority, "BBB"), vaults[1])
	var _ swap.Address = vaults[0]
}
