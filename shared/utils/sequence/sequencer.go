// Package sequence implements last-request-wins bookkeeping for refreshes that may
// overlap, such as search-driven directory listings.
package sequence

import "sync/atomic"

// Sequencer hands out increasing request numbers. A response is current only while no
// newer number has been issued. It does not cancel work; callers discard stale results.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues a new request number and supersedes every earlier one.
func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

// Current reports whether seq is still the newest issued number.
func (s *Sequencer) Current(seq uint64) bool {
	return s.last.Load() == seq
}

// Last returns the newest issued number, 0 before the first call to Next.
func (s *Sequencer) Last() uint64 {
	return s.last.Load()
}
