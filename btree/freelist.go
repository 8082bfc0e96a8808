package btree

import "encoding/binary"

const (
	// HeaderSize is the file-header region preceding the page array:
	// free_pages_count(4) + free_pages_stack(TableMaxPages*4).
	HeaderSize = 4 + TableMaxPages*4
)

// freeList is a bounded LIFO of reclaimed page numbers. It is persisted
// verbatim in the file header so reclamation survives a restart.
type freeList struct {
	stack [TableMaxPages]uint32
	count uint32
}

// push adds pageNum to the stack. Overflow is silently dropped: the page
// number is simply never reclaimed, and num_pages keeps growing instead —
// a correctness-preserving (if wasteful) fallback, never a fatal error.
func (f *freeList) push(pageNum uint32) {
	if f.count >= TableMaxPages {
		return
	}
	f.stack[f.count] = pageNum
	f.count++
}

// pop returns a reusable page number, or (0, false) if none is free.
func (f *freeList) pop() (uint32, bool) {
	if f.count == 0 {
		return 0, false
	}
	f.count--
	return f.stack[f.count], true
}

// decodeHeader loads the free list from the first HeaderSize bytes of the file.
func decodeHeader(data []byte) freeList {
	var f freeList
	f.count = binary.LittleEndian.Uint32(data[0:4])
	if f.count > TableMaxPages {
		f.count = TableMaxPages
	}
	for i := uint32(0); i < f.count; i++ {
		off := 4 + int(i)*4
		f.stack[i] = binary.LittleEndian.Uint32(data[off:])
	}
	return f
}

// encodeHeader writes the free list into the first HeaderSize bytes of dst.
func (f *freeList) encodeHeader(dst []byte) {
	binary.LittleEndian.PutUint32(dst[0:4], f.count)
	for i := uint32(0); i < f.count; i++ {
		off := 4 + int(i)*4
		binary.LittleEndian.PutUint32(dst[off:], f.stack[i])
	}
}
