package btree

import "sort"

// leafFindCell returns the index of the cell holding key, or the index
// where it should be inserted if absent, via binary search.
func leafFindCell(page *Page, key uint32) uint32 {
	n := page.NumCells()
	idx := sort.Search(int(n), func(i int) bool {
		return page.LeafKey(uint32(i)) >= key
	})
	return uint32(idx)
}

// internalNodeFindChild returns the index (0..NumKeys) of the child that
// may contain key: the first cell whose key is >= the search key, or
// NumKeys (the right child) if none qualifies.
func internalNodeFindChild(page *Page, key uint32) uint32 {
	n := page.NumKeys()
	idx := sort.Search(int(n), func(i int) bool {
		return page.InternalKey(uint32(i)) >= key
	})
	return uint32(idx)
}

// internalNodeFindChildPointer returns the index of the cell in page
// whose child pointer equals childPageNum, or NumKeys if that child is
// the right child. Used to locate a child's separator key when climbing
// back up after an insert or delete touches that child.
func internalNodeFindChildPointer(page *Page, childPageNum uint32) uint32 {
	n := page.NumKeys()
	for i := uint32(0); i < n; i++ {
		if page.InternalChild(i) == childPageNum {
			return i
		}
	}
	return n
}

// maxKey returns the largest key stored in the subtree rooted at pageNum.
func maxKey(pager *Pager, pageNum uint32, scope *Scope) (uint32, error) {
	page, err := pager.GetPage(pageNum, scope)
	if err != nil {
		return 0, err
	}
	if page.IsLeaf() {
		n := page.NumCells()
		if n == 0 {
			return 0, nil
		}
		return page.LeafKey(n - 1), nil
	}
	return maxKey(pager, page.RightChild(), scope)
}

// updateAncestorKeys fixes up the separator key recorded for pageNum's
// subtree in its ancestors, after an insert or delete may have changed
// that subtree's maximum key. Each internal key[i] caches the max key of
// children[i]'s subtree, so only the right spine needs walking: if
// pageNum is its parent's explicit child i, updating key[i] is enough
// (the parent's own max is the *right* child's max, which is untouched).
// If pageNum is the parent's implicit right_child, the parent's own max
// just changed too, so climbing continues to the grandparent, and so on
// until an explicit slot is fixed or the root is reached.
func updateAncestorKeys(t *Tree, pageNum uint32, scope *Scope) error {
	page, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}
	if page.IsRoot() {
		return nil
	}

	newMax, err := maxKey(t.pager, pageNum, scope)
	if err != nil {
		return err
	}

	for {
		parentNum := page.Parent()
		parent, err := t.pager.GetPage(parentNum, scope)
		if err != nil {
			return err
		}

		idx := internalNodeFindChildPointer(parent, pageNum)
		if idx < parent.NumKeys() {
			parent.setInternalKey(idx, newMax)
			return nil
		}
		if parent.IsRoot() {
			return nil
		}
		pageNum = parentNum
		page = parent
	}
}
