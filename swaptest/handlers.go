package swaptest

import "github.com/iov-one/swap"

// Handler is a mock implementation of the swap.Handler interface. It
// returns configured result and error and counts calls.
type Handler struct {
	deliverCall   int
	DeliverResult swap.DeliverResult
	DeliverErr    error
}

var _ swap.Handler = (*Handler)(nil)

func (h *Handler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	h.deliverCall++
	if h.DeliverErr != nil {
		return nil, h.DeliverErr
	}
	res := h.DeliverResult
	return &res, nil
}

func (h *Handler) CallCount() int {
	return h.deliverCall
}

// WriteHandler writes the given key/value pair to the store and returns
// configured error. The write happens regardless of the error so that
// rollback can be tested.
type WriteHandler struct {
	Key   []byte
	Value []byte
	Err   error
}

var _ swap.Handler = (*WriteHandler)(nil)

func (h *WriteHandler) Deliver(ctx swap.Context, db swap.KVStore, msg swap.Msg) (*swap.DeliverResult, error) {
	if err := db.Set(h.Key, h.Value); err != nil {
		return nil, err
	}
	return &swap.DeliverResult{}, h.Err
}

// PanicHandler panics on every call with configured value.
type PanicHandler struct {
	Value interface{}
}

func (h PanicHandler) Deliver(swap.Context, swap.KVStore, swap.Msg) (*swap.DeliverResult, error) {
	panic(h.Value)
}

// Msg is a mock message. Its path is configurable and validation returns
// configured error.
type Msg struct {
	RoutePath   string
	Serialized  []byte
	Err         error
	ValidateErr error
}

var _ swap.Msg = (*Msg)(nil)

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Marshal() ([]byte, error) {
	return m.Serialized, m.Err
}

func (m *Msg) Unmarshal(b []byte) error {
	m.Serialized = b
	return m.Err
}

func (m *Msg) Validate() error {
	return m.ValidateErr
}
