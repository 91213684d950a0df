// Package args allocates positional query arguments.
//
// A Holder is an append-only list of bound values. Each Push returns the
// 1-based position of the value, which renders as a PostgreSQL placeholder
// ($1, $2, ...). The Nth push always returns N, so sub-expressions lowered in
// sequence into the same Holder share one global placeholder numbering.
//
// A Holder is drained exactly once when the statement is handed to the
// database. Draining twice, or pushing after a drain, is a programmer error
// and panics with ErrArgumentsTaken.
package args

import (
	"errors"
	"strconv"
)

// ErrArgumentsTaken is the panic value raised when a drained Holder is used.
var ErrArgumentsTaken = errors.New("args: arguments already taken")

// Index is the 1-based position of a bound value.
type Index int

// SQL renders the placeholder, e.g. "$3".
func (i Index) SQL() string {
	return "$" + strconv.Itoa(int(i))
}

// Holder stores bound values in insertion order.
// The zero value is ready to use. A Holder is not safe for concurrent use.
type Holder struct {
	values  []any
	drained bool
}

// New returns an empty Holder.
func New() *Holder {
	return &Holder{}
}

// Push stores v and returns its placeholder index.
func (h *Holder) Push(v any) Index {
	if h.drained {
		panic(ErrArgumentsTaken)
	}
	h.values = append(h.values, v)
	return Index(len(h.values))
}

// Len returns the number of values pushed so far.
func (h *Holder) Len() int {
	return len(h.values)
}

// Drained reports whether Drain has been called.
func (h *Holder) Drained() bool {
	return h.drained
}

// Drain returns the stored values and invalidates the Holder.
// The returned slice is never nil.
func (h *Holder) Drain() []any {
	if h.drained {
		panic(ErrArgumentsTaken)
	}
	h.drained = true
	out := h.values
	h.values = nil
	if out == nil {
		out = []any{}
	}
	return out
}
