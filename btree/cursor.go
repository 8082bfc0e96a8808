package btree

// Cursor locates a (page, cell) position within a leaf and supports
// advancing to the next cell across leaf boundaries via NextLeaf links.
// Each position the cursor visits is pinned against eviction for
// exactly as long as the cursor holds it; the previous leaf is unpinned
// as Advance moves to the next one.
type Cursor struct {
	pager    *Pager
	pageNum  uint32
	cellNum  uint32
	scope    *Scope
	endOfKey bool
}

// newCursor wraps a (pageNum, cellNum) position, pinning pageNum through
// a scope owned by the cursor itself (distinct from the scope used to
// reach it, so the cursor can outlive the lookup that produced it).
func newCursor(pager *Pager, pageNum, cellNum uint32) (*Cursor, error) {
	scope := pager.NewScope()
	page, err := pager.GetPage(pageNum, scope)
	if err != nil {
		scope.Release()
		return nil, err
	}
	return &Cursor{
		pager:    pager,
		pageNum:  pageNum,
		cellNum:  cellNum,
		scope:    scope,
		endOfKey: cellNum >= page.NumCells(),
	}, nil
}

// AtEnd reports whether the cursor has advanced past the last row.
func (c *Cursor) AtEnd() bool { return c.endOfKey }

// Key returns the key at the cursor's current position.
func (c *Cursor) Key() (uint32, error) {
	page, err := c.pager.GetPage(c.pageNum, c.scope)
	if err != nil {
		return 0, err
	}
	return page.LeafKey(c.cellNum), nil
}

// Value returns the row bytes at the cursor's current position. The
// returned slice is only valid until the next call that might evict
// c.pageNum; callers that need to keep the bytes should copy them.
func (c *Cursor) Value() ([]byte, error) {
	page, err := c.pager.GetPage(c.pageNum, c.scope)
	if err != nil {
		return nil, err
	}
	return page.LeafValue(c.cellNum), nil
}

// Advance moves the cursor to the next cell, crossing into the next
// leaf (via NextLeaf) when the current leaf is exhausted.
func (c *Cursor) Advance() error {
	page, err := c.pager.GetPage(c.pageNum, c.scope)
	if err != nil {
		return err
	}
	c.cellNum++
	if c.cellNum < page.NumCells() {
		return nil
	}
	next := page.NextLeaf()
	if next == 0 {
		c.endOfKey = true
		return nil
	}
	c.pager.Unpin(c.pageNum)
	c.pageNum = next
	c.cellNum = 0
	if _, err := c.pager.GetPage(c.pageNum, c.scope); err != nil {
		return err
	}
	nextPage, err := c.pager.GetPage(c.pageNum, c.scope)
	if err != nil {
		return err
	}
	c.endOfKey = nextPage.NumCells() == 0
	return nil
}

// Close releases the cursor's pins. Callers must call it once done.
func (c *Cursor) Close() {
	c.scope.Release()
}
