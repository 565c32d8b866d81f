package main

import (
	"testing"

	"github.com/iov-one/swap/crypto"
	"github.com/iov-one/swap/errors"
	"github.com/iov-one/swap/swaptest/assert"
)

func TestKeyFiles(t *testing.T) {
	conf := DefaultConfig(t.TempDir())
	path := conf.keyPath("alice")

	_, err := loadKey(path)
	if !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found, got %+v", err)
	}

	key := crypto.GenPrivKeyEd25519()
	assert.Nil(t, saveKey(path, key))
	if err := saveKey(path, crypto.GenPrivKeyEd25519()); !errors.ErrDuplicate.Is(err) {
		t.Fatalf("key must not be overwritten: %+v", err)
	}

	loaded, err := loadKey(path)
	assert.Nil(t, err)
	assert.Equal(t, key.PublicKey().Address(), loaded.PublicKey().Address())
}

func TestResolveAddress(t *testing.T) {
	conf := DefaultConfig(t.TempDir())
	key := crypto.GenPrivKeyEd25519()
	assert.Nil(t, saveKey(conf.keyPath("bob"), key))
	want := key.PublicKey().Address()

	bech, err := want.Bech32()
	assert.Nil(t, err)

	for _, ref := range []string{"bob", want.String(), "hex:" + want.String(), "bech32:" + bech} {
		got, err := resolveAddress(conf, ref)
		if err != nil {
			t.Fatalf("%s: %+v", ref, err)
		}
		assert.Equal(t, want, got)
	}

	if _, err := resolveAddress(conf, "carol"); !errors.ErrInvalidInput.Is(err) {
		t.Fatalf("unknown key name must not resolve: %+v", err)
	}
	if _, err := resolveAddress(conf, "hex:"); !errors.ErrEmpty.Is(err) {
		t.Fatalf("empty address: %+v", err)
	}
}
