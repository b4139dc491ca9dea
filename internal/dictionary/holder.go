package dictionary

import "sync/atomic"

// Holder publishes the current WordSet to concurrent readers. Swapping in a
// reloaded set never blocks a scan already in progress.
type Holder struct {
	current atomic.Pointer[WordSet]
}

// NewHolder returns a Holder serving set.
func NewHolder(set WordSet) *Holder {
	h := &Holder{}
	h.Store(set)
	return h
}

// Load returns the current set. A Holder that was never stored to yields
// the empty set.
func (h *Holder) Load() WordSet {
	if h == nil {
		return WordSet{}
	}
	if set := h.current.Load(); set != nil {
		return *set
	}
	return WordSet{}
}

// Store replaces the current set.
func (h *Holder) Store(set WordSet) {
	h.current.Store(&set)
}
