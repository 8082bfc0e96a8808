package btree

import "fmt"

// Tree is the top-level handle on a single database file: a pager plus
// the fixed root page number. All of Insert, Delete, TableFind and
// TableStart take a *Tree.
type Tree struct {
	pager    *Pager
	rootPage uint32
}

// Open opens path, initializing a fresh empty leaf root if the file is new.
func Open(path string) (*Tree, error) {
	pager, err := OpenPager(path)
	if err != nil {
		return nil, err
	}

	t := &Tree{pager: pager, rootPage: RootPage}

	if pager.NumPages() == 0 {
		scope := pager.NewScope()
		root, err := pager.GetPage(RootPage, scope)
		if err != nil {
			scope.Release()
			return nil, err
		}
		*root = *newLeafPage()
		root.SetRoot(true)
		scope.Release()
	}

	return t, nil
}

// Close flushes and closes the underlying file.
func (t *Tree) Close() error {
	return t.pager.Close()
}

// InsertRow inserts (key, value) into the tree.
func (t *Tree) InsertRow(key uint32, value []byte) error {
	return Insert(t, key, value)
}

// DeleteRow removes key from the tree.
func (t *Tree) DeleteRow(key uint32) error {
	return Delete(t, key)
}

// Start returns a cursor positioned at the first row in key order.
func (t *Tree) Start() (*Cursor, error) {
	return TableStart(t)
}

// Find returns a cursor positioned at key, or where it would be inserted.
func (t *Tree) Find(key uint32) (*Cursor, error) {
	return TableFind(t, key)
}

// CountKeys walks the leaf chain and counts every stored row.
func (t *Tree) CountKeys() (int64, error) {
	cur, err := TableStart(t)
	if err != nil {
		return 0, err
	}
	defer cur.Close()

	var n int64
	for !cur.AtEnd() {
		n++
		if err := cur.Advance(); err != nil {
			return 0, err
		}
	}
	return n, nil
}

// Stats reports pager bookkeeping counters for this tree.
func (t *Tree) Stats() Stats {
	return t.pager.Stats()
}

// Dump returns a human-readable structural rendering of the tree,
// indented by depth, for the `.btree` debug command.
func (t *Tree) Dump() (string, error) {
	scope := t.pager.NewScope()
	defer scope.Release()

	var out []string
	if err := dumpNode(t.pager, t.rootPage, 0, &out, scope); err != nil {
		return "", err
	}

	s := ""
	for _, line := range out {
		s += line + "\n"
	}
	return s, nil
}

func dumpNode(pager *Pager, pageNum uint32, depth int, out *[]string, scope *Scope) error {
	page, err := pager.GetPage(pageNum, scope)
	if err != nil {
		return err
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}

	if page.IsLeaf() {
		*out = append(*out, fmt.Sprintf("%s- leaf (page %d, size %d)", indent, pageNum, page.NumCells()))
		for i := uint32(0); i < page.NumCells(); i++ {
			*out = append(*out, fmt.Sprintf("%s  - %d", indent, page.LeafKey(i)))
		}
		return nil
	}

	*out = append(*out, fmt.Sprintf("%s- internal (page %d, size %d)", indent, pageNum, page.NumKeys()))
	for i := uint32(0); i < page.NumKeys(); i++ {
		if err := dumpNode(pager, page.InternalChild(i), depth+1, out, scope); err != nil {
			return err
		}
		*out = append(*out, fmt.Sprintf("%s- key %d", indent, page.InternalKey(i)))
	}
	return dumpNode(pager, page.RightChild(), depth+1, out, scope)
}
