// Package sequence implements the per-lot monotonic sequence source
// (spec.md §4.3, C3): a process-wide component producing strictly
// monotonic per-lot 64-bit positive integers.
package sequence

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Source is satisfied by every sequence implementation the engine can
// be constructed with. Next is atomic; consecutive calls for the same
// lot produce strictly increasing values, starting at 1. Different lots
// are independent.
type Source interface {
	Next(lotID uuid.UUID) int64
	Current(lotID uuid.UUID) int64
}

// InProcess is the in-process implementation: an atomic counter per lot
// in a concurrent map. spec.md §4.3 also contemplates a centralized
// variant (a remote atomic-increment primitive keyed by
// "bid:seq:{lotId}") for multi-instance deployments; this module does
// not carry a dependency suited to that (see DESIGN.md). InProcess is
// correct for a single engine instance, which is this module's scope.
type InProcess struct {
	counters sync.Map // uuid.UUID -> *int64
}

// NewInProcess constructs an empty in-process sequence source.
func NewInProcess() *InProcess {
	return &InProcess{}
}

// Next returns the next strictly increasing value for lotID. Thread-safe
// under arbitrary parallelism.
func (s *InProcess) Next(lotID uuid.UUID) int64 {
	counter, _ := s.counters.LoadOrStore(lotID, new(int64))
	return atomic.AddInt64(counter.(*int64), 1)
}

// Current returns the last issued value for lotID, or 0 if Next was
// never called for it. Diagnostic only.
func (s *InProcess) Current(lotID uuid.UUID) int64 {
	counter, ok := s.counters.Load(lotID)
	if !ok {
		return 0
	}
	return atomic.LoadInt64(counter.(*int64))
}
