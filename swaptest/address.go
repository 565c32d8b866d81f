package swaptest

import (
	"testing"

	"github.com/iov-one/swap"
)

// ParseAddress takes an address in a human readable format and returns
// its binary representation. It fails the test if the address cannot be
// parsed.
func ParseAddress(t testing.TB, encodedAddress string) swap.Address {
	t.Helper()

	addr, err := swap.ParseAddress(encodedAddress)
	if err != nil {
		t.Fatalf("cannot parse %q address: %s", encodedAddress, err)
	}
	return addr
}

// SequenceID returns an 8 byte big endian representation of n.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
