package encoding

import (
	"fmt"

	"github.com/parquet-go/parquet-decoding/format"
)

// State carries the bookkeeping that every decoder shares: the encoding it
// decodes and the number of values left in the current page. Decoders embed
// it to inherit the Encoding and ValuesLeft methods.
type State struct {
	encoding  format.Encoding
	numValues int
}

// MakeState returns the initial state of a decoder for enc, with no page.
func MakeState(enc format.Encoding) State {
	return State{encoding: enc}
}

func (s *State) Encoding() format.Encoding { return s.encoding }

func (s *State) ValuesLeft() int { return s.numValues }

// Begin starts a new page of numValues values.
func (s *State) Begin(numValues int) error {
	if numValues < 0 {
		s.numValues = 0
		return fmt.Errorf("%s: negative value count %d: %w", s.encoding, numValues, ErrInvalidArgument)
	}
	s.numValues = numValues
	return nil
}

// Limit returns the number of values that a request for n values can produce.
func (s *State) Limit(n int) int { return min(n, s.numValues) }

// Consume records that n values were produced.
func (s *State) Consume(n int) { s.numValues -= n }

// Errorf wraps err with the encoding name and a formatted message. The
// remaining values are discarded since a decoder cannot resume after a
// framing error.
func (s *State) Errorf(err error, msg string, args ...any) error {
	s.numValues = 0
	return fmt.Errorf("%s: %s: %w", s.encoding, fmt.Sprintf(msg, args...), err)
}
