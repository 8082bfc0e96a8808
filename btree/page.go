package btree

import "encoding/binary"

// Page is one fixed 4096-byte page: either a leaf or an internal node of
// the B+ tree. The struct itself carries no page number — callers track
// that separately (the pager keys its cache by page number).
type Page struct {
	buf [PageSize]byte
}

// newLeafPage zero-initializes buf as an empty leaf.
func newLeafPage() *Page {
	p := &Page{}
	p.SetNodeType(NodeLeaf)
	p.SetRoot(false)
	p.setNumCells(0)
	p.setNextLeaf(0)
	return p
}

// newInternalPage zero-initializes buf as an empty internal node
// (right_child == InvalidPage marks it empty).
func newInternalPage() *Page {
	p := &Page{}
	p.SetNodeType(NodeInternal)
	p.SetRoot(false)
	p.setNumKeys(0)
	p.SetRightChild(InvalidPage)
	return p
}

// loadPage wraps a raw PageSize buffer read from disk.
func loadPage(data []byte) *Page {
	p := &Page{}
	copy(p.buf[:], data)
	return p
}

// Bytes exposes the full page buffer, for the pager to read/write to disk.
func (p *Page) Bytes() []byte { return p.buf[:] }

// --- common header ---

func (p *Page) NodeType() byte { return p.buf[offNodeType] }
func (p *Page) SetNodeType(t byte) { p.buf[offNodeType] = t }
func (p *Page) IsLeaf() bool       { return p.NodeType() == NodeLeaf }

func (p *Page) IsRoot() bool { return p.buf[offIsRoot] != 0 }
func (p *Page) SetRoot(v bool) {
	if v {
		p.buf[offIsRoot] = 1
	} else {
		p.buf[offIsRoot] = 0
	}
}

func (p *Page) Parent() uint32 { return binary.LittleEndian.Uint32(p.buf[offParent:]) }
func (p *Page) SetParent(pageNum uint32) {
	binary.LittleEndian.PutUint32(p.buf[offParent:], pageNum)
}

// --- leaf node ---

func (p *Page) NumCells() uint32 { return binary.LittleEndian.Uint32(p.buf[offLeafNumCells:]) }
func (p *Page) setNumCells(n uint32) {
	binary.LittleEndian.PutUint32(p.buf[offLeafNumCells:], n)
}

func (p *Page) NextLeaf() uint32 { return binary.LittleEndian.Uint32(p.buf[offLeafNextLeaf:]) }
func (p *Page) setNextLeaf(pageNum uint32) {
	binary.LittleEndian.PutUint32(p.buf[offLeafNextLeaf:], pageNum)
}

func (p *Page) leafCellOffset(cellNum uint32) int {
	return leafHeaderSize + int(cellNum)*leafCellSize
}

// LeafKey returns the key of the cell at cellNum.
func (p *Page) LeafKey(cellNum uint32) uint32 {
	off := p.leafCellOffset(cellNum)
	return binary.LittleEndian.Uint32(p.buf[off:])
}

func (p *Page) setLeafKey(cellNum uint32, key uint32) {
	off := p.leafCellOffset(cellNum)
	binary.LittleEndian.PutUint32(p.buf[off:], key)
}

// LeafValue returns a mutable slice over the row bytes at cellNum, valid
// only while the page's buffer is not reused (i.e. within the pin scope
// that fetched it).
func (p *Page) LeafValue(cellNum uint32) []byte {
	off := p.leafCellOffset(cellNum) + leafKeySize
	return p.buf[off : off+leafValueSize]
}

// copyLeafCellFrom copies the whole (key, value) cell at srcIdx of src to
// dstIdx of p.
func (p *Page) copyLeafCellFrom(src *Page, srcIdx, dstIdx uint32) {
	srcOff := src.leafCellOffset(srcIdx)
	dstOff := p.leafCellOffset(dstIdx)
	copy(p.buf[dstOff:dstOff+leafCellSize], src.buf[srcOff:srcOff+leafCellSize])
}

// --- internal node ---

func (p *Page) NumKeys() uint32 { return binary.LittleEndian.Uint32(p.buf[offInternalNumKeys:]) }
func (p *Page) setNumKeys(n uint32) {
	binary.LittleEndian.PutUint32(p.buf[offInternalNumKeys:], n)
}

func (p *Page) RightChild() uint32 {
	return binary.LittleEndian.Uint32(p.buf[offInternalRightChild:])
}
func (p *Page) SetRightChild(pageNum uint32) {
	binary.LittleEndian.PutUint32(p.buf[offInternalRightChild:], pageNum)
}

func (p *Page) internalCellOffset(idx uint32) int {
	return internalHeaderSize + int(idx)*internalCellSize
}

func (p *Page) InternalChild(idx uint32) uint32 {
	off := p.internalCellOffset(idx)
	return binary.LittleEndian.Uint32(p.buf[off:])
}

func (p *Page) setInternalChild(idx uint32, child uint32) {
	off := p.internalCellOffset(idx)
	binary.LittleEndian.PutUint32(p.buf[off:], child)
}

func (p *Page) InternalKey(idx uint32) uint32 {
	off := p.internalCellOffset(idx) + internalChildSize
	return binary.LittleEndian.Uint32(p.buf[off:])
}

func (p *Page) setInternalKey(idx uint32, key uint32) {
	off := p.internalCellOffset(idx) + internalChildSize
	binary.LittleEndian.PutUint32(p.buf[off:], key)
}

// Child returns children[idx]: for idx < NumKeys that's the idx'th cell's
// child, for idx == NumKeys it's the right child.
func (p *Page) Child(idx uint32) uint32 {
	if idx == p.NumKeys() {
		return p.RightChild()
	}
	return p.InternalChild(idx)
}
