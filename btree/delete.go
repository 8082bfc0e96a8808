package btree

import "kvtree/common"

// Delete removes key from the tree, rebalancing underfull nodes by
// borrowing from a sibling or merging with one, all the way up to a
// possible root collapse. Returns common.ErrKeyNotFound if key is absent.
func Delete(t *Tree, key uint32) error {
	scope := t.pager.NewScope()
	defer scope.Release()

	leafNum, err := findLeaf(t.pager, t.rootPage, key, scope)
	if err != nil {
		return err
	}
	leaf, err := t.pager.GetPage(leafNum, scope)
	if err != nil {
		return err
	}
	cellNum := leafFindCell(leaf, key)
	if cellNum >= leaf.NumCells() || leaf.LeafKey(cellNum) != key {
		return common.ErrKeyNotFound
	}

	n := leaf.NumCells()
	for i := cellNum; i < n-1; i++ {
		leaf.copyLeafCellFrom(leaf, i+1, i)
	}
	leaf.setNumCells(n - 1)

	if err := updateAncestorKeys(t, leafNum, scope); err != nil {
		return err
	}
	return rebalanceAfterDelete(t, leafNum, scope)
}

// parentAndIndex returns pageNum's parent page/number and pageNum's
// index among the parent's children (NumKeys if pageNum is the implicit
// right child).
func parentAndIndex(t *Tree, pageNum uint32, scope *Scope) (uint32, *Page, uint32, error) {
	page, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return 0, nil, 0, err
	}
	parentNum := page.Parent()
	parent, err := t.pager.GetPage(parentNum, scope)
	if err != nil {
		return 0, nil, 0, err
	}
	idx := internalNodeFindChildPointer(parent, pageNum)
	return parentNum, parent, idx, nil
}

// rebalanceAfterDelete checks whether pageNum is now underfull and fixes
// it (root pages are handled separately: they never borrow or merge,
// only possibly collapse a level).
func rebalanceAfterDelete(t *Tree, pageNum uint32, scope *Scope) error {
	page, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}
	if page.IsRoot() {
		return collapseRootIfNeeded(t, pageNum, scope)
	}

	var underflow bool
	if page.IsLeaf() {
		underflow = page.NumCells() < LeafMinCells
	} else {
		underflow = page.NumKeys() < InternalNodeMinKeys
	}
	if !underflow {
		return nil
	}
	if page.IsLeaf() {
		return rebalanceLeaf(t, pageNum, scope)
	}
	return rebalanceInternal(t, pageNum, scope)
}

// collapseRootIfNeeded shrinks the tree by one level when an internal
// root has been reduced to a single child by merges below it.
func collapseRootIfNeeded(t *Tree, rootPageNum uint32, scope *Scope) error {
	root, err := t.pager.GetPage(rootPageNum, scope)
	if err != nil {
		return err
	}
	if root.IsLeaf() || root.NumKeys() > 0 {
		return nil
	}
	onlyChildNum := root.RightChild()
	if onlyChildNum == InvalidPage {
		return nil
	}
	onlyChild, err := t.pager.GetPage(onlyChildNum, scope)
	if err != nil {
		return err
	}

	*root = *onlyChild
	root.SetRoot(true)

	if !root.IsLeaf() {
		for i := uint32(0); i <= root.NumKeys(); i++ {
			c, err := t.pager.GetPage(root.Child(i), scope)
			if err != nil {
				return err
			}
			c.SetParent(rootPageNum)
		}
	}

	t.pager.FreePage(onlyChildNum)
	return nil
}

func rebalanceLeaf(t *Tree, pageNum uint32, scope *Scope) error {
	_, parent, idx, err := parentAndIndex(t, pageNum, scope)
	if err != nil {
		return err
	}

	if idx > 0 {
		leftNum := parent.Child(idx - 1)
		left, err := t.pager.GetPage(leftNum, scope)
		if err != nil {
			return err
		}
		if left.NumCells() > LeafMinCells {
			return borrowFromLeftLeaf(t, leftNum, pageNum, scope)
		}
	}
	if idx < parent.NumKeys() {
		rightNum := parent.Child(idx + 1)
		right, err := t.pager.GetPage(rightNum, scope)
		if err != nil {
			return err
		}
		if right.NumCells() > LeafMinCells {
			return borrowFromRightLeaf(t, pageNum, rightNum, scope)
		}
	}

	if idx > 0 {
		return leafMerge(t, parent.Child(idx-1), pageNum, scope)
	}
	return leafMerge(t, pageNum, parent.Child(idx+1), scope)
}

func borrowFromLeftLeaf(t *Tree, leftNum, pageNum uint32, scope *Scope) error {
	left, err := t.pager.GetPage(leftNum, scope)
	if err != nil {
		return err
	}
	page, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}

	n := left.NumCells()
	for i := page.NumCells(); i > 0; i-- {
		page.copyLeafCellFrom(page, i-1, i)
	}
	page.copyLeafCellFrom(left, n-1, 0)
	page.setNumCells(page.NumCells() + 1)
	left.setNumCells(n - 1)

	return updateAncestorKeys(t, leftNum, scope)
}

func borrowFromRightLeaf(t *Tree, pageNum, rightNum uint32, scope *Scope) error {
	page, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}
	right, err := t.pager.GetPage(rightNum, scope)
	if err != nil {
		return err
	}

	page.copyLeafCellFrom(right, 0, page.NumCells())
	page.setNumCells(page.NumCells() + 1)
	for i := uint32(0); i < right.NumCells()-1; i++ {
		right.copyLeafCellFrom(right, i+1, i)
	}
	right.setNumCells(right.NumCells() - 1)

	return updateAncestorKeys(t, pageNum, scope)
}

func leafMerge(t *Tree, leftNum, rightNum uint32, scope *Scope) error {
	left, err := t.pager.GetPage(leftNum, scope)
	if err != nil {
		return err
	}
	right, err := t.pager.GetPage(rightNum, scope)
	if err != nil {
		return err
	}

	base := left.NumCells()
	for i := uint32(0); i < right.NumCells(); i++ {
		left.copyLeafCellFrom(right, i, base+i)
	}
	left.setNumCells(base + right.NumCells())
	left.setNextLeaf(right.NextLeaf())

	t.pager.FreePage(rightNum)
	parentNum := left.Parent()
	if err := internalNodeDeleteChild(t, parentNum, rightNum, scope); err != nil {
		return err
	}
	return updateAncestorKeys(t, leftNum, scope)
}

func rebalanceInternal(t *Tree, pageNum uint32, scope *Scope) error {
	_, parent, idx, err := parentAndIndex(t, pageNum, scope)
	if err != nil {
		return err
	}

	if idx > 0 {
		leftNum := parent.Child(idx - 1)
		left, err := t.pager.GetPage(leftNum, scope)
		if err != nil {
			return err
		}
		if left.NumKeys() > InternalNodeMinKeys {
			return borrowFromLeftInternal(t, leftNum, pageNum, scope)
		}
	}
	if idx < parent.NumKeys() {
		rightNum := parent.Child(idx + 1)
		right, err := t.pager.GetPage(rightNum, scope)
		if err != nil {
			return err
		}
		if right.NumKeys() > InternalNodeMinKeys {
			return borrowFromRightInternal(t, pageNum, rightNum, scope)
		}
	}

	if idx > 0 {
		return internalMerge(t, parent.Child(idx-1), pageNum, scope)
	}
	return internalMerge(t, pageNum, parent.Child(idx+1), scope)
}

func borrowFromLeftInternal(t *Tree, leftNum, pageNum uint32, scope *Scope) error {
	left, err := t.pager.GetPage(leftNum, scope)
	if err != nil {
		return err
	}
	page, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}

	movedChild := left.RightChild()
	movedKey, err := maxKey(t.pager, movedChild, scope)
	if err != nil {
		return err
	}

	n := left.NumKeys()
	left.SetRightChild(left.InternalChild(n - 1))
	left.setNumKeys(n - 1)

	for i := page.NumKeys(); i > 0; i-- {
		page.setInternalChild(i, page.InternalChild(i-1))
		page.setInternalKey(i, page.InternalKey(i-1))
	}
	page.setInternalChild(0, movedChild)
	page.setInternalKey(0, movedKey)
	page.setNumKeys(page.NumKeys() + 1)

	movedChildPage, err := t.pager.GetPage(movedChild, scope)
	if err != nil {
		return err
	}
	movedChildPage.SetParent(pageNum)

	return updateAncestorKeys(t, leftNum, scope)
}

func borrowFromRightInternal(t *Tree, pageNum, rightNum uint32, scope *Scope) error {
	page, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}
	right, err := t.pager.GetPage(rightNum, scope)
	if err != nil {
		return err
	}

	movedChild := right.InternalChild(0)

	for i := uint32(0); i < right.NumKeys()-1; i++ {
		right.setInternalChild(i, right.InternalChild(i+1))
		right.setInternalKey(i, right.InternalKey(i+1))
	}
	right.setNumKeys(right.NumKeys() - 1)

	oldRightChild := page.RightChild()
	oldRightKey, err := maxKey(t.pager, oldRightChild, scope)
	if err != nil {
		return err
	}
	page.setInternalChild(page.NumKeys(), oldRightChild)
	page.setInternalKey(page.NumKeys(), oldRightKey)
	page.SetRightChild(movedChild)
	page.setNumKeys(page.NumKeys() + 1)

	movedChildPage, err := t.pager.GetPage(movedChild, scope)
	if err != nil {
		return err
	}
	movedChildPage.SetParent(pageNum)

	return updateAncestorKeys(t, pageNum, scope)
}

func internalMerge(t *Tree, leftNum, rightNum uint32, scope *Scope) error {
	left, err := t.pager.GetPage(leftNum, scope)
	if err != nil {
		return err
	}
	right, err := t.pager.GetPage(rightNum, scope)
	if err != nil {
		return err
	}

	base := left.NumKeys()
	oldLeftRight := left.RightChild()
	oldLeftRightKey, err := maxKey(t.pager, oldLeftRight, scope)
	if err != nil {
		return err
	}
	left.setInternalChild(base, oldLeftRight)
	left.setInternalKey(base, oldLeftRightKey)
	base++

	for i := uint32(0); i < right.NumKeys(); i++ {
		left.setInternalChild(base+i, right.InternalChild(i))
		left.setInternalKey(base+i, right.InternalKey(i))
	}
	left.SetRightChild(right.RightChild())
	left.setNumKeys(base + right.NumKeys())

	for i := uint32(0); i <= right.NumKeys(); i++ {
		c, err := t.pager.GetPage(right.Child(i), scope)
		if err != nil {
			return err
		}
		c.SetParent(leftNum)
	}

	t.pager.FreePage(rightNum)
	parentNum := left.Parent()
	if err := internalNodeDeleteChild(t, parentNum, rightNum, scope); err != nil {
		return err
	}
	return updateAncestorKeys(t, leftNum, scope)
}

// internalNodeDeleteChild removes childPageNum's entry from parent
// (demoting a new right child if childPageNum was the old one), then
// checks whether parent itself now needs rebalancing.
func internalNodeDeleteChild(t *Tree, parentPageNum, childPageNum uint32, scope *Scope) error {
	parent, err := t.pager.GetPage(parentPageNum, scope)
	if err != nil {
		return err
	}

	idx := internalNodeFindChildPointer(parent, childPageNum)
	n := parent.NumKeys()
	if idx < n {
		for i := idx; i < n-1; i++ {
			parent.setInternalChild(i, parent.InternalChild(i+1))
			parent.setInternalKey(i, parent.InternalKey(i+1))
		}
		parent.setNumKeys(n - 1)
	} else if n == 0 {
		parent.SetRightChild(InvalidPage)
	} else {
		parent.SetRightChild(parent.InternalChild(n - 1))
		parent.setNumKeys(n - 1)
	}

	return rebalanceAfterDelete(t, parentPageNum, scope)
}
