package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iov-one/swap/errors"
)

type sample struct {
	Ticker   string `cbor:"1,keyasint"`
	Decimals uint8  `cbor:"2,keyasint"`
	Owner    []byte `cbor:"3,keyasint,omitempty"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sample{Ticker: "USDC", Decimals: 6, Owner: []byte{1, 2, 3}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %+v", err)
	}

	var decoded sample
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %+v", err)
	}
	if decoded.Ticker != original.Ticker || decoded.Decimals != original.Decimals || !bytes.Equal(decoded.Owner, original.Owner) {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	msg := sample{Ticker: "SOL", Decimals: 9}

	first, err := Marshal(msg)
	if err != nil {
		t.Fatalf("first Marshal: %+v", err)
	}
	second, err := Marshal(msg)
	if err != nil {
		t.Fatalf("second Marshal: %+v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	var s sample
	err := Unmarshal([]byte{0xff, 0x01, 0x02}, &s)
	if !errors.ErrInvalidModel.Is(err) {
		t.Fatalf("want invalid model error, got %+v", err)
	}
}

func TestUnmarshalDuplicatedKey(t *testing.T) {
	// {1: "A", 1: "B"}
	raw := []byte{0xa2, 0x01, 0x61, 'A', 0x01, 0x61, 'B'}
	var s sample
	if err := Unmarshal(raw, &s); !errors.ErrInvalidModel.Is(err) {
		t.Fatalf("want invalid model error, got %+v", err)
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(sample{Ticker: "ETH", Decimals: 18})
	if err != nil {
		t.Fatalf("Marshal: %+v", err)
	}
	diag, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %s", err)
	}
	if !strings.Contains(diag, `"ETH"`) {
		t.Fatalf("unexpected diagnostic output: %s", diag)
	}
}
