package btree

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kvtree/common"
	"kvtree/common/testutil"
	"kvtree/row"
)

func openTestTree(t *testing.T) *Tree {
	t.Helper()
	dir := testutil.TempDir(t)
	tree, err := Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })
	return tree
}

func encodeRow(t *testing.T, id uint32) []byte {
	t.Helper()
	r, err := row.New(id, fmt.Sprintf("user%d", id), "u@example.com")
	require.NoError(t, err)
	buf := make([]byte, row.Size)
	r.Encode(buf)
	return buf
}

func TestTreeInsertFindRoundTrip(t *testing.T) {
	tree := openTestTree(t)

	require.NoError(t, Insert(tree, 7, encodeRow(t, 7)))

	cur, err := TableFind(tree, 7)
	require.NoError(t, err)
	defer cur.Close()

	require.False(t, cur.AtEnd())
	key, err := cur.Key()
	require.NoError(t, err)
	require.Equal(t, uint32(7), key)
}

func TestTreeInsertDuplicateKeyRejected(t *testing.T) {
	tree := openTestTree(t)
	require.NoError(t, Insert(tree, 1, encodeRow(t, 1)))
	require.ErrorIs(t, Insert(tree, 1, encodeRow(t, 1)), common.ErrDuplicateKey)
}

func TestTreeDeleteMissingKey(t *testing.T) {
	tree := openTestTree(t)
	require.ErrorIs(t, Delete(tree, 99), common.ErrKeyNotFound)
}

func TestTreeSplitsAcrossManyInserts(t *testing.T) {
	tree := openTestTree(t)

	const n = 500
	for i := uint32(1); i <= n; i++ {
		require.NoError(t, Insert(tree, i, encodeRow(t, i)))
	}

	cur, err := TableStart(tree)
	require.NoError(t, err)
	defer cur.Close()

	var count uint32
	for !cur.AtEnd() {
		count++
		key, err := cur.Key()
		require.NoError(t, err)
		require.Equal(t, count, key)
		require.NoError(t, cur.Advance())
	}
	require.Equal(t, uint32(n), count)
}

func TestTreeInsertOutOfOrderStillSortsOnScan(t *testing.T) {
	tree := openTestTree(t)

	order := []uint32{50, 10, 90, 30, 70, 20, 80, 40, 60, 1, 100}
	for _, id := range order {
		require.NoError(t, Insert(tree, id, encodeRow(t, id)))
	}

	cur, err := TableStart(tree)
	require.NoError(t, err)
	defer cur.Close()

	var last uint32
	var count int
	for !cur.AtEnd() {
		key, err := cur.Key()
		require.NoError(t, err)
		require.Greater(t, key, last)
		last = key
		count++
		require.NoError(t, cur.Advance())
	}
	require.Equal(t, len(order), count)
}

func TestTreeDeleteAllShrinksToEmptyLeafRoot(t *testing.T) {
	tree := openTestTree(t)

	const n = 300
	for i := uint32(1); i <= n; i++ {
		require.NoError(t, Insert(tree, i, encodeRow(t, i)))
	}
	for i := uint32(1); i <= n; i++ {
		require.NoError(t, Delete(tree, i))
	}

	cur, err := TableStart(tree)
	require.NoError(t, err)
	defer cur.Close()
	require.True(t, cur.AtEnd())

	scope := tree.pager.NewScope()
	defer scope.Release()
	root, err := tree.pager.GetPage(RootPage, scope)
	require.NoError(t, err)
	require.True(t, root.IsLeaf())
}

func TestTreeDeleteEveryOtherKeyPreservesRest(t *testing.T) {
	tree := openTestTree(t)

	const n = 400
	for i := uint32(1); i <= n; i++ {
		require.NoError(t, Insert(tree, i, encodeRow(t, i)))
	}
	for i := uint32(1); i <= n; i += 2 {
		require.NoError(t, Delete(tree, i))
	}

	cur, err := TableStart(tree)
	require.NoError(t, err)
	defer cur.Close()

	var got []uint32
	for !cur.AtEnd() {
		key, err := cur.Key()
		require.NoError(t, err)
		got = append(got, key)
		require.NoError(t, cur.Advance())
	}

	var want []uint32
	for i := uint32(2); i <= n; i += 2 {
		want = append(want, i)
	}
	require.Equal(t, want, got)
}

func TestTreePersistsAcrossReopen(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "test.db")

	tree, err := Open(path)
	require.NoError(t, err)
	for i := uint32(1); i <= 50; i++ {
		require.NoError(t, Insert(tree, i, encodeRow(t, i)))
	}
	require.NoError(t, tree.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	cur, err := TableFind(reopened, 25)
	require.NoError(t, err)
	defer cur.Close()
	require.False(t, cur.AtEnd())
	key, err := cur.Key()
	require.NoError(t, err)
	require.Equal(t, uint32(25), key)
}

func TestTreeReusesFreedPages(t *testing.T) {
	tree := openTestTree(t)

	const n = 300
	for i := uint32(1); i <= n; i++ {
		require.NoError(t, Insert(tree, i, encodeRow(t, i)))
	}
	before := tree.Stats().NumPages

	for i := uint32(1); i <= n; i++ {
		require.NoError(t, Delete(tree, i))
	}
	for i := uint32(1); i <= n; i++ {
		require.NoError(t, Insert(tree, i, encodeRow(t, i)))
	}
	after := tree.Stats().NumPages

	require.LessOrEqual(t, after, before+1)
}
