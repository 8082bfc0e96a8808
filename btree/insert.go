package btree

import "kvtree/common"

// Insert places (key, value) into the tree rooted at t.rootPage, splitting
// leaves and internal nodes up the spine as needed. Returns
// common.ErrDuplicateKey if key is already present.
func Insert(t *Tree, key uint32, value []byte) error {
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
	if cellNum < leaf.NumCells() && leaf.LeafKey(cellNum) == key {
		return common.ErrDuplicateKey
	}
	return leafNodeInsert(t, leafNum, cellNum, key, value, scope)
}

func leafNodeInsert(t *Tree, pageNum, cellNum, key uint32, value []byte, scope *Scope) error {
	leaf, err := t.pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}

	if leaf.NumCells() >= LeafMaxCells {
		return leafNodeSplitAndInsert(t, pageNum, cellNum, key, value, scope)
	}

	for i := leaf.NumCells(); i > cellNum; i-- {
		leaf.copyLeafCellFrom(leaf, i-1, i)
	}
	leaf.setLeafKey(cellNum, key)
	copy(leaf.LeafValue(cellNum), value)
	leaf.setNumCells(leaf.NumCells() + 1)

	return updateAncestorKeys(t, pageNum, scope)
}

// leafNodeSplitAndInsert splits a full leaf into two, distributing its
// LeafMaxCells existing cells plus the one being inserted between the
// original page (left half) and a freshly allocated page (right half).
func leafNodeSplitAndInsert(t *Tree, oldPageNum, cellNum, key uint32, value []byte, scope *Scope) error {
	old, err := t.pager.GetPage(oldPageNum, scope)
	if err != nil {
		return err
	}
	isRootNode := old.IsRoot()
	origParent := old.Parent()

	newPageNum := t.pager.GetUnusedPageNum()
	newPage, err := t.pager.GetPage(newPageNum, scope)
	if err != nil {
		return err
	}
	*newPage = *newLeafPage()

	for i := int32(LeafMaxCells); i >= 0; i-- {
		var dest *Page
		destIdx := uint32(i)
		if uint32(i) >= LeftSplitCount {
			dest = newPage
			destIdx = uint32(i) - LeftSplitCount
		} else {
			dest = old
		}

		switch {
		case uint32(i) == cellNum:
			dest.setLeafKey(destIdx, key)
			copy(dest.LeafValue(destIdx), value)
		case uint32(i) > cellNum:
			dest.copyLeafCellFrom(old, uint32(i)-1, destIdx)
		default:
			dest.copyLeafCellFrom(old, uint32(i), destIdx)
		}
	}

	old.setNumCells(LeftSplitCount)
	newPage.setNumCells(RightSplitCount)
	newPage.setNextLeaf(old.NextLeaf())
	old.setNextLeaf(newPageNum)
	newPage.SetRoot(false)

	if isRootNode {
		return createNewRoot(t, oldPageNum, newPageNum, scope)
	}

	old.SetParent(origParent)
	newPage.SetParent(origParent)

	if err := updateAncestorKeys(t, oldPageNum, scope); err != nil {
		return err
	}
	return internalNodeInsert(t, origParent, newPageNum, scope)
}

// createNewRoot rehouses rootPageNum's current content into a freshly
// allocated left-child page, then reinitializes rootPageNum itself as an
// internal node pointing at that new left child and at rightChildPageNum.
// Used both when a leaf root splits and when an internal root splits —
// in both cases rootPageNum already holds the "left half" in place.
func createNewRoot(t *Tree, rootPageNum, rightChildPageNum uint32, scope *Scope) error {
	root, err := t.pager.GetPage(rootPageNum, scope)
	if err != nil {
		return err
	}
	rightChild, err := t.pager.GetPage(rightChildPageNum, scope)
	if err != nil {
		return err
	}

	leftChildPageNum := t.pager.GetUnusedPageNum()
	leftChild, err := t.pager.GetPage(leftChildPageNum, scope)
	if err != nil {
		return err
	}
	*leftChild = *root
	leftChild.SetRoot(false)
	leftChild.SetParent(rootPageNum)

	if !leftChild.IsLeaf() {
		for i := uint32(0); i <= leftChild.NumKeys(); i++ {
			gc, err := t.pager.GetPage(leftChild.Child(i), scope)
			if err != nil {
				return err
			}
			gc.SetParent(leftChildPageNum)
		}
	}

	rightChild.SetParent(rootPageNum)

	leftMax, err := maxKey(t.pager, leftChildPageNum, scope)
	if err != nil {
		return err
	}

	*root = *newInternalPage()
	root.SetRoot(true)
	root.setNumKeys(1)
	root.setInternalChild(0, leftChildPageNum)
	root.setInternalKey(0, leftMax)
	root.SetRightChild(rightChildPageNum)
	return nil
}

// internalNodeInsert adds childPageNum (a node whose subtree max key is
// childMaxKey) as a new child of parentPageNum, splitting the parent
// first if it's already full.
func internalNodeInsert(t *Tree, parentPageNum, childPageNum uint32, scope *Scope) error {
	parent, err := t.pager.GetPage(parentPageNum, scope)
	if err != nil {
		return err
	}
	childMaxKey, err := maxKey(t.pager, childPageNum, scope)
	if err != nil {
		return err
	}

	if parent.NumKeys() >= InternalNodeMaxKeys {
		return internalNodeSplitAndInsert(t, parentPageNum, childPageNum, childMaxKey, scope)
	}

	child, err := t.pager.GetPage(childPageNum, scope)
	if err != nil {
		return err
	}
	child.SetParent(parentPageNum)

	originalNumKeys := parent.NumKeys()
	rightChildPageNum := parent.RightChild()

	if rightChildPageNum == InvalidPage {
		parent.SetRightChild(childPageNum)
		return updateAncestorKeys(t, parentPageNum, scope)
	}

	rightChildMaxKey, err := maxKey(t.pager, rightChildPageNum, scope)
	if err != nil {
		return err
	}

	if childMaxKey > rightChildMaxKey {
		parent.setInternalChild(originalNumKeys, rightChildPageNum)
		parent.setInternalKey(originalNumKeys, rightChildMaxKey)
		parent.SetRightChild(childPageNum)
		parent.setNumKeys(originalNumKeys + 1)
		return updateAncestorKeys(t, parentPageNum, scope)
	}

	insertIdx := internalNodeFindChild(parent, childMaxKey)
	for i := originalNumKeys; i > insertIdx; i-- {
		parent.setInternalChild(i, parent.InternalChild(i-1))
		parent.setInternalKey(i, parent.InternalKey(i-1))
	}
	parent.setInternalChild(insertIdx, childPageNum)
	parent.setInternalKey(insertIdx, childMaxKey)
	parent.setNumKeys(originalNumKeys + 1)
	return updateAncestorKeys(t, parentPageNum, scope)
}

// internalNodeSplitAndInsert splits a full internal node into two,
// distributing its existing NumKeys+1 children plus the one being
// inserted between the original page (left half) and a freshly
// allocated page (right half).
func internalNodeSplitAndInsert(t *Tree, oldPageNum, newChildPageNum, newChildMaxKey uint32, scope *Scope) error {
	old, err := t.pager.GetPage(oldPageNum, scope)
	if err != nil {
		return err
	}
	isRootNode := old.IsRoot()
	origParent := old.Parent()

	oldRightChild := old.RightChild()
	oldRightChildMaxKey, err := maxKey(t.pager, oldRightChild, scope)
	if err != nil {
		return err
	}

	n := old.NumKeys()
	allChildren := make([]uint32, 0, n+2)
	allKeys := make([]uint32, 0, n+1)
	inserted := false
	for i := uint32(0); i < n; i++ {
		key := old.InternalKey(i)
		if !inserted && newChildMaxKey < key {
			allChildren = append(allChildren, newChildPageNum)
			allKeys = append(allKeys, newChildMaxKey)
			inserted = true
		}
		allChildren = append(allChildren, old.InternalChild(i))
		allKeys = append(allKeys, key)
	}

	// The new child may itself be the largest subtree overall, in which
	// case it displaces old's right_child rather than slotting in among
	// the keyed entries (mirroring the childMaxKey > rightChildMaxKey
	// check in the non-split path above).
	if newChildMaxKey > oldRightChildMaxKey {
		allChildren = append(allChildren, oldRightChild)
		allKeys = append(allKeys, oldRightChildMaxKey)
		allChildren = append(allChildren, newChildPageNum)
	} else {
		if !inserted {
			allChildren = append(allChildren, newChildPageNum)
			allKeys = append(allKeys, newChildMaxKey)
		}
		allChildren = append(allChildren, oldRightChild)
	}

	newPageNum := t.pager.GetUnusedPageNum()
	newPage, err := t.pager.GetPage(newPageNum, scope)
	if err != nil {
		return err
	}
	*newPage = *newInternalPage()

	totalChildren := uint32(len(allChildren))
	leftChildCount := totalChildren / 2
	rightChildCount := totalChildren - leftChildCount

	*old = *newInternalPage()
	for i := uint32(0); i < leftChildCount-1; i++ {
		old.setInternalChild(i, allChildren[i])
		old.setInternalKey(i, allKeys[i])
	}
	old.SetRightChild(allChildren[leftChildCount-1])
	old.setNumKeys(leftChildCount - 1)

	for i := uint32(0); i < rightChildCount-1; i++ {
		srcIdx := leftChildCount + i
		newPage.setInternalChild(i, allChildren[srcIdx])
		newPage.setInternalKey(i, allKeys[srcIdx])
	}
	newPage.SetRightChild(allChildren[totalChildren-1])
	newPage.setNumKeys(rightChildCount - 1)
	newPage.SetRoot(false)

	for i := uint32(0); i <= old.NumKeys(); i++ {
		c, err := t.pager.GetPage(old.Child(i), scope)
		if err != nil {
			return err
		}
		c.SetParent(oldPageNum)
	}
	for i := uint32(0); i <= newPage.NumKeys(); i++ {
		c, err := t.pager.GetPage(newPage.Child(i), scope)
		if err != nil {
			return err
		}
		c.SetParent(newPageNum)
	}

	if isRootNode {
		return createNewRoot(t, oldPageNum, newPageNum, scope)
	}

	old.SetParent(origParent)
	newPage.SetParent(origParent)

	if err := updateAncestorKeys(t, oldPageNum, scope); err != nil {
		return err
	}
	return internalNodeInsert(t, origParent, newPageNum, scope)
}
