package swapd

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iov-one/swap"
	"github.com/iov-one/swap/app"
	"github.com/iov-one/swap/asset"
	"github.com/iov-one/swap/crypto"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/x/custody"
	"github.com/iov-one/swap/x/escrow"
	"github.com/iov-one/swap/x/sigs"
	"github.com/tendermint/tendermint/libs/log"
)

const testChainID = "swap-test-chain"

type testLedger struct {
	t      testing.TB
	ledger *app.Ledger
	clock  *app.FixedClock
	ctrls  Controllers
}

func newTestLedger(t testing.TB, funded map[*crypto.PrivateKey][]asset.Entry) *testLedger {
	t.Helper()

	var gen custody.Genesis
	gen.Mints = []custody.GenesisMint{
		{Ticker: "AAA", Decimals: 6},
		{Ticker: "BBB", Decimals: 6},
		{Ticker: "CCC", Decimals: 2},
	}
	for key, entries := range funded {
		owner := key.PublicKey().Address()
		gen.Reserves = append(gen.Reserves, custody.GenesisReserve{Owner: owner, Amount: 100})
		for _, e := range entries {
			gen.Accounts = append(gen.Accounts, custody.GenesisAccount{Owner: owner, Balance: e})
		}
	}
	conf := map[string]interface{}{
		"custody": custody.Configuration{AccountDeposit: 1},
		"escrow":  escrow.Configuration{MaxBundleSize: 5, RecordDeposit: 2},
	}
	state := swap.Options{}
	state["custody"] = mustJSON(t, gen)
	state["conf"] = mustJSON(t, conf)

	clock := app.NewFixedClock(time.Date(2022, 1, 1, 12, 0, 0, 0, time.UTC))
	ctrls := NewControllers()
	l, err := Ledger("", ctrls, clock, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, l.InitChain(app.Genesis{ChainID: testChainID, AppState: state}, Initializers()))
	_, err = l.Commit()
	require.NoError(t, err)
	return &testLedger{t: t, ledger: l, clock: clock, ctrls: ctrls}
}

func mustJSON(t testing.TB, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

// deliver signs msg with the next sequence of signer and passes it through
// the wire format before delivery.
func (tl *testLedger) deliver(signer *crypto.PrivateKey, msg swap.Msg) (*swap.DeliverResult, error) {
	var seq int64
	err := tl.ledger.View(func(ctx swap.Context, db swap.ReadOnlyKVStore) error {
		var err error
		seq, err = sigs.NextNonce(db, signer.PublicKey().Address())
		return err
	})
	require.NoError(tl.t, err)

	env := sigs.NewEnvelope(msg)
	require.NoError(tl.t, env.Sign(signer, testChainID, seq))
	raw, err := env.Marshal()
	require.NoError(tl.t, err)
	decoded, err := DecodeEnvelope(raw)
	require.NoError(tl.t, err)
	return tl.ledger.Deliver(decoded)
}

func (tl *testLedger) balance(owner *crypto.PrivateKey, ticker string) uint64 {
	var amount uint64
	err := tl.ledger.View(func(ctx swap.Context, db swap.ReadOnlyKVStore) error {
		addr := custody.AccountAddress(owner.PublicKey().Address(), ticker)
		switch n, err := tl.ctrls.Custody.Balance(db, addr); {
		case err == nil:
			amount = n
			return nil
		case errors.ErrNotFound.Is(err):
			return nil
		default:
			return err
		}
	})
	require.NoError(tl.t, err)
	return amount
}

func (tl *testLedger) escrowOf(id []byte) (*escrow.Escrow, error) {
	var e *escrow.Escrow
	err := tl.ledger.View(func(ctx swap.Context, db swap.ReadOnlyKVStore) error {
		var err error
		e, err = tl.ctrls.Escrow.Escrow(db, id)
		return err
	})
	return e, err
}

func entries(t testing.TB, h string) asset.Bundle {
	b, err := asset.ParseBundle(h)
	require.NoError(t, err)
	return b
}

func TestFullFillRoundTrip(t *testing.T) {
	maker := crypto.GenPrivKeyEd25519()
	taker := crypto.GenPrivKeyEd25519()
	tl := newTestLedger(t, map[*crypto.PrivateKey][]asset.Entry{
		maker: entries(t, "1000 AAA"),
		taker: entries(t, "1000 BBB"),
	})

	res, err := tl.deliver(maker, &escrow.MakeMsg{
		Kind:     escrow.FullFill,
		Maker:    maker.PublicKey().Address(),
		Seed:     1,
		Offered:  entries(t, "100 AAA"),
		Expected: entries(t, "50 BBB"),
	})
	require.NoError(t, err)
	id := res.Data
	assert.Equal(t, uint64(900), tl.balance(maker, "AAA"))

	// the taker must sign for itself
	_, err = tl.deliver(maker, &escrow.TakeMsg{EscrowID: id, Taker: taker.PublicKey().Address()})
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	res, err = tl.deliver(taker, &escrow.TakeMsg{EscrowID: id, Taker: taker.PublicKey().Address()})
	require.NoError(t, err)
	assert.Contains(t, res.Log, "closed")
	_, err = tl.ledger.Commit()
	require.NoError(t, err)

	assert.Equal(t, uint64(900), tl.balance(maker, "AAA"))
	assert.Equal(t, uint64(50), tl.balance(maker, "BBB"))
	assert.Equal(t, uint64(100), tl.balance(taker, "AAA"))
	assert.Equal(t, uint64(950), tl.balance(taker, "BBB"))

	_, err = tl.escrowOf(id)
	assert.True(t, errors.ErrNotFound.Is(err))

	// a closed escrow cannot be taken again
	_, err = tl.deliver(taker, &escrow.TakeMsg{EscrowID: id, Taker: taker.PublicKey().Address()})
	assert.True(t, errors.ErrNotFound.Is(err))
}

func TestConcurrentTakes(t *testing.T) {
	maker := crypto.GenPrivKeyEd25519()
	takers := []*crypto.PrivateKey{
		crypto.GenPrivKeyEd25519(),
		crypto.GenPrivKeyEd25519(),
		crypto.GenPrivKeyEd25519(),
	}
	funded := map[*crypto.PrivateKey][]asset.Entry{maker: entries(t, "10 AAA")}
	for _, k := range takers {
		funded[k] = entries(t, "10 BBB")
	}
	tl := newTestLedger(t, funded)

	res, err := tl.deliver(maker, &escrow.MakeMsg{
		Kind:     escrow.FullFill,
		Maker:    maker.PublicKey().Address(),
		Seed:     7,
		Offered:  entries(t, "10 AAA"),
		Expected: entries(t, "3 BBB"),
	})
	require.NoError(t, err)
	id := res.Data

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		success  []*crypto.PrivateKey
		failures int
	)
	for _, k := range takers {
		wg.Add(1)
		go func(k *crypto.PrivateKey) {
			defer wg.Done()
			_, err := tl.deliver(k, &escrow.TakeMsg{EscrowID: id, Taker: k.PublicKey().Address()})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success = append(success, k)
			} else if errors.ErrNotFound.Is(err) {
				failures++
			} else {
				t.Errorf("unexpected error: %+v", err)
			}
		}(k)
	}
	wg.Wait()

	require.Len(t, success, 1)
	assert.Equal(t, len(takers)-1, failures)
	winner := success[0]
	assert.Equal(t, uint64(10), tl.balance(winner, "AAA"))
	assert.Equal(t, uint64(3), tl.balance(maker, "BBB"))
	for _, k := range takers {
		if k != winner {
			assert.Equal(t, uint64(10), tl.balance(k, "BBB"))
			assert.Equal(t, uint64(0), tl.balance(k, "AAA"))
		}
	}
}

func TestPartialFillThroughLedger(t *testing.T) {
	maker := crypto.GenPrivKeyEd25519()
	taker := crypto.GenPrivKeyEd25519()
	tl := newTestLedger(t, map[*crypto.PrivateKey][]asset.Entry{
		maker: entries(t, "100 AAA"),
		taker: entries(t, "1000 BBB"),
	})
	takerAddr := taker.PublicKey().Address()

	res, err := tl.deliver(maker, &escrow.MakeMsg{
		Kind:     escrow.PartialFill,
		Maker:    maker.PublicKey().Address(),
		Seed:     2,
		Offered:  entries(t, "100 AAA"),
		Expected: entries(t, "3 BBB"),
	})
	require.NoError(t, err)
	id := res.Data

	res, err = tl.deliver(taker, &escrow.TakeMsg{EscrowID: id, Taker: takerAddr, Amount: 40})
	require.NoError(t, err)
	assert.Contains(t, res.Log, "remaining 60")

	_, err = tl.deliver(taker, &escrow.TakeMsg{EscrowID: id, Taker: takerAddr, Amount: 61})
	assert.True(t, errors.ErrExceedsRemaining.Is(err), "%+v", err)

	_, err = tl.deliver(taker, &escrow.TakeMsg{EscrowID: id, Taker: takerAddr, Amount: 60})
	require.NoError(t, err)

	assert.Equal(t, uint64(100), tl.balance(taker, "AAA"))
	assert.Equal(t, uint64(300), tl.balance(maker, "BBB"))
	assert.Equal(t, uint64(700), tl.balance(taker, "BBB"))
}

func TestTimeBoxedRefund(t *testing.T) {
	maker := crypto.GenPrivKeyEd25519()
	taker := crypto.GenPrivKeyEd25519()
	tl := newTestLedger(t, map[*crypto.PrivateKey][]asset.Entry{
		maker: entries(t, "100 AAA"),
		taker: entries(t, "100 BBB"),
	})

	res, err := tl.deliver(maker, &escrow.MakeMsg{
		Kind:     escrow.TimeBoxed,
		Maker:    maker.PublicKey().Address(),
		Seed:     3,
		Offered:  entries(t, "100 AAA"),
		Expected: entries(t, "10 BBB"),
		Duration: 60,
	})
	require.NoError(t, err)
	id := res.Data

	_, err = tl.deliver(maker, &escrow.RefundMsg{EscrowID: id})
	assert.True(t, errors.ErrNotExpired.Is(err), "%+v", err)

	require.NoError(t, tl.clock.Advance(time.Minute))
	_, err = tl.deliver(taker, &escrow.TakeMsg{EscrowID: id, Taker: taker.PublicKey().Address()})
	assert.True(t, errors.ErrExpired.Is(err), "%+v", err)

	_, err = tl.deliver(maker, &escrow.RefundMsg{EscrowID: id})
	require.NoError(t, err)
	assert.Equal(t, uint64(100), tl.balance(maker, "AAA"))
	assert.Equal(t, uint64(100), tl.balance(taker, "BBB"))
}

func TestDecodeEnvelope(t *testing.T) {
	key := crypto.GenPrivKeyEd25519()
	msg := &custody.TransferMsg{
		Sender:    key.PublicKey().Address(),
		Recipient: crypto.GenPrivKeyEd25519().PublicKey().Address(),
		Amount:    asset.NewEntry(5, "AAA"),
	}
	env := sigs.NewEnvelope(msg)
	require.NoError(t, env.Sign(key, testChainID, 0))
	raw, err := env.Marshal()
	require.NoError(t, err)

	got, err := DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, msg, got.GetMsg())
	require.Len(t, got.GetSignatures(), 1)

	_, err = DecodeEnvelope([]byte("not cbor"))
	assert.Error(t, err)
}
