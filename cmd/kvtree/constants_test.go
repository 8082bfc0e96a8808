package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"kvtree/common/testutil"
	"kvtree/engine"
)

func TestPrintConstantsRendersLayoutAndStats(t *testing.T) {
	dir := testutil.TempDir(t)
	e, err := engine.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })

	var buf bytes.Buffer
	printConstants(&buf, e)

	out := buf.String()
	require.Contains(t, out, "ROW_SIZE")
	require.Contains(t, out, "LEAF_NODE_MAX_CELLS")
	require.Contains(t, out, "num_rows")
}
