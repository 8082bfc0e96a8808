package main

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"kvtree/btree"
	"kvtree/engine"
	"kvtree/row"
)

// printConstants renders the fixed layout constants and the live pager
// stats for the `.constants` dot-command, the way the classic tutorial's
// do_meta_command "print constants" branch does.
func printConstants(w io.Writer, e *engine.Engine) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"constant", "value"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	table.Append([]string{"ROW_SIZE", fmt.Sprint(row.Size)})
	table.Append([]string{"PAGE_SIZE", fmt.Sprint(btree.PageSize)})
	table.Append([]string{"TABLE_MAX_PAGES", fmt.Sprint(btree.TableMaxPages)})
	table.Append([]string{"MAX_NUM_LOADED_PAGES", fmt.Sprint(btree.MaxNumLoadedPages)})
	table.Append([]string{"LEAF_NODE_MAX_CELLS", fmt.Sprint(btree.LeafMaxCells)})
	table.Append([]string{"LEAF_NODE_LEFT_SPLIT_COUNT", fmt.Sprint(btree.LeftSplitCount)})
	table.Append([]string{"LEAF_NODE_RIGHT_SPLIT_COUNT", fmt.Sprint(btree.RightSplitCount)})
	table.Append([]string{"LEAF_NODE_MIN_CELLS", fmt.Sprint(btree.LeafMinCells)})
	table.Append([]string{"INTERNAL_NODE_MAX_KEYS", fmt.Sprint(btree.InternalNodeMaxKeys)})

	if stats, err := e.Stats(); err == nil {
		table.Append([]string{"num_rows", fmt.Sprint(stats.NumKeys)})
		table.Append([]string{"num_pages", fmt.Sprint(stats.NumPages)})
		table.Append([]string{"page_reads", fmt.Sprint(stats.PageReads)})
		table.Append([]string{"page_writes", fmt.Sprint(stats.PageWrites)})
		table.Append([]string{"cache_hits", fmt.Sprint(stats.CacheHits)})
	}

	table.Render()
}
