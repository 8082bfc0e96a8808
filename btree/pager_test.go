package btree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kvtree/common/testutil"
)

func openTestPager(t *testing.T) *Pager {
	t.Helper()
	dir := testutil.TempDir(t)
	p, err := OpenPager(filepath.Join(dir, "pager.db"))
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestPagerGetPageCachesAcrossCalls(t *testing.T) {
	p := openTestPager(t)
	scope := p.NewScope()
	defer scope.Release()

	page1, err := p.GetPage(0, scope)
	require.NoError(t, err)
	page2, err := p.GetPage(0, scope)
	require.NoError(t, err)
	require.Same(t, page1, page2)
}

func TestPagerEvictsLeastRecentlyUsedUnpinned(t *testing.T) {
	p := openTestPager(t)

	for i := uint32(0); i < MaxNumLoadedPages; i++ {
		scope := p.NewScope()
		_, err := p.GetPage(i, scope)
		require.NoError(t, err)
		scope.Release()
	}

	scope := p.NewScope()
	defer scope.Release()
	_, err := p.GetPage(MaxNumLoadedPages, scope)
	require.NoError(t, err)
	_, resident := p.cache[0]
	require.False(t, resident)
	require.Equal(t, MaxNumLoadedPages, p.lru.Len())
}

func TestPagerRejectsOutOfRangePageNum(t *testing.T) {
	p := openTestPager(t)
	scope := p.NewScope()
	defer scope.Release()

	_, err := p.GetPage(TableMaxPages, scope)
	require.Error(t, err)
}

func TestPagerFreeListRoundTripsThroughHeader(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "pager.db")

	p, err := OpenPager(path)
	require.NoError(t, err)
	scope := p.NewScope()
	_, err = p.GetPage(0, scope)
	require.NoError(t, err)
	_, err = p.GetPage(1, scope)
	require.NoError(t, err)
	scope.Release()

	p.FreePage(1)
	require.NoError(t, p.Close())

	reopened, err := OpenPager(path)
	require.NoError(t, err)
	defer reopened.Close()

	reused := reopened.GetUnusedPageNum()
	require.Equal(t, uint32(1), reused)
}

func TestPagerPinPreventsEviction(t *testing.T) {
	p := openTestPager(t)
	scope := p.NewScope()
	defer scope.Release()

	_, err := p.GetPage(0, scope)
	require.NoError(t, err)

	for i := uint32(1); i < MaxNumLoadedPages+5; i++ {
		other := p.NewScope()
		_, err := p.GetPage(i, other)
		require.NoError(t, err)
		other.Release()
	}

	require.True(t, p.isPinned(0))
	_, resident := p.cache[0]
	require.True(t, resident)
}
