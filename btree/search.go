package btree

// findLeaf descends from pageNum to the leaf that would contain key,
// pinning every page it visits into scope.
func findLeaf(pager *Pager, pageNum uint32, key uint32, scope *Scope) (uint32, error) {
	for {
		page, err := pager.GetPage(pageNum, scope)
		if err != nil {
			return 0, err
		}
		if page.IsLeaf() {
			return pageNum, nil
		}
		childIdx := internalNodeFindChild(page, key)
		pageNum = page.Child(childIdx)
	}
}

// TableFind returns a cursor positioned at key if present, or at the
// position where it would be inserted otherwise.
func TableFind(t *Tree, key uint32) (*Cursor, error) {
	scope := t.pager.NewScope()
	defer scope.Release()

	leafNum, err := findLeaf(t.pager, t.rootPage, key, scope)
	if err != nil {
		return nil, err
	}
	leaf, err := t.pager.GetPage(leafNum, scope)
	if err != nil {
		return nil, err
	}
	cellNum := leafFindCell(leaf, key)
	scope.Release()
	return newCursor(t.pager, leafNum, cellNum)
}

// TableStart returns a cursor positioned at the first row in key order.
func TableStart(t *Tree) (*Cursor, error) {
	scope := t.pager.NewScope()
	defer scope.Release()

	pageNum := t.rootPage
	for {
		page, err := t.pager.GetPage(pageNum, scope)
		if err != nil {
			return nil, err
		}
		if page.IsLeaf() {
			scope.Release()
			return newCursor(t.pager, pageNum, 0)
		}
		pageNum = page.Child(0)
	}
}
