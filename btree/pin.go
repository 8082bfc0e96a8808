package btree

// Scope is a per-operation collection of pages pinned during a single
// engine-level tree operation. Every top-level operation owns exactly one
// scope; helper functions receive it as a parameter and record pins into
// it through Pager.GetPage. Releasing the scope unpins every page it
// recorded, in the order they were pinned.
//
// Scope is the single-threaded analog of a latch-coupling record: a
// per-traversal list of what's currently held, released on exit. Here it
// protects against LRU eviction invalidating a buffer still in use by a
// recursive call, not against concurrent writers — this engine never
// runs two operations against the same file at once.
type Scope struct {
	pager  *Pager
	pinned []uint32
}

// NewScope opens a pin scope against pager. Callers must defer scope.Release().
func (p *Pager) NewScope() *Scope {
	return &Scope{pager: p}
}

// record appends pageNum to the scope's pin list. Called by Pager.GetPage;
// not exported since pins must always originate from a page fetch.
func (s *Scope) record(pageNum uint32) {
	s.pinned = append(s.pinned, pageNum)
}

// Release unpins every page this scope pinned, in pin order, and forgets them.
func (s *Scope) Release() {
	for _, pageNum := range s.pinned {
		s.pager.Unpin(pageNum)
	}
	s.pinned = s.pinned[:0]
}
