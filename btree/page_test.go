package btree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLeafPageDefaults(t *testing.T) {
	p := newLeafPage()
	require.True(t, p.IsLeaf())
	require.False(t, p.IsRoot())
	require.Equal(t, uint32(0), p.NumCells())
	require.Equal(t, uint32(0), p.NextLeaf())
}

func TestNewInternalPageDefaults(t *testing.T) {
	p := newInternalPage()
	require.False(t, p.IsLeaf())
	require.Equal(t, uint32(0), p.NumKeys())
	require.Equal(t, InvalidPage, p.RightChild())
}

func TestLeafCellRoundTrip(t *testing.T) {
	p := newLeafPage()
	p.setLeafKey(0, 42)
	copy(p.LeafValue(0), []byte("hello"))
	p.setNumCells(1)

	require.Equal(t, uint32(42), p.LeafKey(0))
	require.Equal(t, byte('h'), p.LeafValue(0)[0])
}

func TestCopyLeafCellFrom(t *testing.T) {
	src := newLeafPage()
	src.setLeafKey(0, 7)
	copy(src.LeafValue(0), []byte("value"))

	dst := newLeafPage()
	dst.copyLeafCellFrom(src, 0, 3)

	require.Equal(t, uint32(7), dst.LeafKey(3))
	require.Equal(t, byte('v'), dst.LeafValue(3)[0])
}

func TestInternalNodeChildAccessor(t *testing.T) {
	p := newInternalPage()
	p.setNumKeys(2)
	p.setInternalChild(0, 10)
	p.setInternalKey(0, 100)
	p.setInternalChild(1, 11)
	p.setInternalKey(1, 200)
	p.SetRightChild(12)

	require.Equal(t, uint32(10), p.Child(0))
	require.Equal(t, uint32(11), p.Child(1))
	require.Equal(t, uint32(12), p.Child(2))
}

func TestLoadPagePreservesBytes(t *testing.T) {
	p := newLeafPage()
	p.setLeafKey(0, 55)
	p.setNumCells(1)

	loaded := loadPage(p.Bytes())
	require.Equal(t, uint32(55), loaded.LeafKey(0))
	require.Equal(t, uint32(1), loaded.NumCells())
}
