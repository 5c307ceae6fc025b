package admin

import "sync/atomic"

// IDSource hands out book identifiers. Identifiers are never reused.
type IDSource interface {
	NextID() int64
}

// SequenceIDs is a process-wide monotonic IDSource safe for concurrent use.
type SequenceIDs struct {
	last atomic.Int64
}

// NewSequenceIDs starts a sequence whose first id is after+1.
func NewSequenceIDs(after int64) *SequenceIDs {
	ids := &SequenceIDs{}
	ids.last.Store(after)
	return ids
}

// NextID returns the next identifier.
func (s *SequenceIDs) NextID() int64 {
	return s.last.Add(1)
}

// IDFunc adapts a function into an IDSource.
type IDFunc func() int64

// NextID calls f.
func (f IDFunc) NextID() int64 {
	return f()
}
