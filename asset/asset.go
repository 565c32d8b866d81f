/*
Package asset holds the value types exchanged through escrows: an asset
ticker, a positive amount of a single asset (Entry) and an ordered list
of entries (Bundle).

All arithmetic is done on unsigned 64 bit integers and every operation
that could wrap returns ErrOverflow instead.
*/
package asset

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
	"strings"

	"github.com/iov-one/swap/errors"
)

// IsTicker is the RegExp to ensure valid asset tickers.
var IsTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,3}$`).MatchString

// MaxDecimals is the greatest fixed point scale an asset can declare.
const MaxDecimals = 18

// Add returns a + b or ErrOverflow.
func Add(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

// Sub returns a - b or ErrOverflow if b is greater than a.
func Sub(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d - %d", a, b)
	}
	return diff, nil
}

// Mul returns a * b or ErrOverflow.
func Mul(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d * %d", a, b)
	}
	return lo, nil
}

// Entry is a positive amount of a single asset.
type Entry struct {
	Ticker string `cbor:"1,keyasint" json:"ticker"`
	Amount uint64 `cbor:"2,keyasint" json:"amount"`
}

// NewEntry returns an entry of given amount and ticker.
func NewEntry(amount uint64, ticker string) Entry {
	return Entry{Ticker: ticker, Amount: amount}
}

// Validate ensures the ticker is well formed and the amount is positive.
func (e Entry) Validate() error {
	var errs error
	if !IsTicker(e.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.Wrapf(errors.ErrInvalidInput, "invalid ticker %q", e.Ticker))
	}
	if e.Amount == 0 {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrInvalidAmount, "must be greater than zero"))
	}
	return errs
}

// String returns the human readable "<amount> <ticker>" format.
func (e Entry) String() string {
	if e.Ticker == "" {
		return strconv.FormatUint(e.Amount, 10)
	}
	return strconv.FormatUint(e.Amount, 10) + " " + e.Ticker
}

var humanEntryRx = regexp.MustCompile(`^\s*(\d+)\s*([A-Z][A-Z0-9]{2,3})\s*$`)

// ParseEntry parses the human readable "<amount> <ticker>" format.
func ParseEntry(h string) (Entry, error) {
	m := humanEntryRx.FindStringSubmatch(h)
	if m == nil {
		return Entry{}, errors.Wrapf(errors.ErrInvalidInput, "invalid entry format %q", h)
	}
	amount, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return Entry{}, errors.Wrapf(errors.ErrOverflow, "amount %s", m[1])
	}
	return Entry{Ticker: m[2], Amount: amount}, nil
}

// Set updates this entry value to what is provided. This method implements
// flag.Value interface.
func (e *Entry) Set(raw string) error {
	val, err := ParseEntry(raw)
	if err != nil {
		return err
	}
	*e = val
	return nil
}

// Type implements pflag.Value interface.
func (e *Entry) Type() string {
	return "asset"
}

func (e *Entry) UnmarshalJSON(raw []byte) error {
	// Prioritize human readable format.
	var human string
	if err := json.Unmarshal(raw, &human); err == nil {
		val, err := ParseEntry(human)
		if err != nil {
			return err
		}
		*e = val
		return nil
	}

	var entry struct {
		Ticker string `json:"ticker"`
		Amount uint64 `json:"amount"`
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return errors.Wrap(errors.ErrInvalidInput, err.Error())
	}
	e.Ticker = entry.Ticker
	e.Amount = entry.Amount
	return nil
}

// Bundle is an ordered list of entries. Order is significant: it defines
// how bundle legs are paired with externally supplied handles.
type Bundle []Entry

// Validate ensures the bundle is not empty, holds at most max entries, all
// entries are valid and no asset is repeated. A max value of zero disables
// the size check.
func (b Bundle) Validate(max int) error {
	if len(b) == 0 {
		return errors.Wrap(errors.ErrEmpty, "bundle")
	}
	if max > 0 && len(b) > max {
		return errors.Wrapf(errors.ErrInvalidInput, "bundle of %d entries exceeds limit of %d", len(b), max)
	}
	seen := make(map[string]struct{}, len(b))
	var errs error
	for i, e := range b {
		if err := e.Validate(); err != nil {
			errs = errors.AppendField(errs, fmt.Sprintf("Bundle.%d", i), err)
			continue
		}
		if _, ok := seen[e.Ticker]; ok {
			errs = errors.AppendField(errs, fmt.Sprintf("Bundle.%d", i), errors.Wrapf(errors.ErrDuplicate, "asset %s", e.Ticker))
		}
		seen[e.Ticker] = struct{}{}
	}
	return errs
}

// Tickers returns tickers of all entries in order.
func (b Bundle) Tickers() []string {
	res := make([]string, len(b))
	for i, e := range b {
		res[i] = e.Ticker
	}
	return res
}

// Find returns the entry of given asset.
func (b Bundle) Find(ticker string) (Entry, bool) {
	for _, e := range b {
		if e.Ticker == ticker {
			return e, true
		}
	}
	return Entry{}, false
}

// Clone returns a copy that can be safely modified.
func (b Bundle) Clone() Bundle {
	if b == nil {
		return nil
	}
	res := make(Bundle, len(b))
	copy(res, b)
	return res
}

func (b Bundle) String() string {
	parts := make([]string, len(b))
	for i, e := range b {
		parts[i] = e.String()
	}
	return strings.Join(parts, ",")
}

// ParseBundle parses a comma separated list of human readable entries.
func ParseBundle(h string) (Bundle, error) {
	if strings.TrimSpace(h) == "" {
		return nil, nil
	}
	var b Bundle
	for _, part := range strings.Split(h, ",") {
		e, err := ParseEntry(part)
		if err != nil {
			return nil, err
		}
		b = append(b, e)
	}
	return b, nil
}

// Set appends entries to the bundle. This method implements flag.Value
// interface so that a bundle flag can be repeated.
func (b *Bundle) Set(raw string) error {
	val, err := ParseBundle(raw)
	if err != nil {
		return err
	}
	*b = append(*b, val...)
	return nil
}

// Type implements pflag.Value interface.
func (b *Bundle) Type() string {
	return "bundle"
}
