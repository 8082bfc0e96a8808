// Package engine is the facade consumed by the REPL (cmd/kvtree):
// Open/Close a database file, Insert/Select/Delete rows, and expose the
// debug surfaces (PrintTree, Stats) the dot-commands need. It knows
// nothing about statement text; see the parser package for that.
package engine

import (
	"fmt"
	"io"
	"sync"

	"kvtree/btree"
	"kvtree/common"
	"kvtree/row"
)

// Engine owns one open database file. Every method holds mu for its whole
// duration, so calls from several goroutines run one at a time; it targets
// a single-user, single-process REPL.
type Engine struct {
	mu     sync.Mutex
	tree   *btree.Tree
	closed bool
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Engine, error) {
	tree, err := btree.Open(path)
	if err != nil {
		return nil, fmt.Errorf("engine: open %s: %w", path, err)
	}
	return &Engine{tree: tree}, nil
}

// Close flushes and closes the underlying file. Further Insert, Delete,
// SelectAll, PrintTree and Stats calls return common.ErrClosed; a second
// Close does nothing and returns nil.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.tree.Close()
}

// Insert adds r, keyed by r.ID. Returns common.ErrDuplicateKey if r.ID
// is already present.
func (e *Engine) Insert(r row.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return common.ErrClosed
	}

	buf := make([]byte, row.Size)
	r.Encode(buf)
	return e.tree.InsertRow(r.ID, buf)
}

// Delete removes the row keyed by id. Returns common.ErrKeyNotFound if absent.
func (e *Engine) Delete(id uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return common.ErrClosed
	}
	return e.tree.DeleteRow(id)
}

// SelectAll calls emit for every row in ascending key order, stopping at
// the first error emit returns.
func (e *Engine) SelectAll(emit func(row.Row) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return common.ErrClosed
	}

	cur, err := e.tree.Start()
	if err != nil {
		return err
	}
	defer cur.Close()

	for !cur.AtEnd() {
		buf, err := cur.Value()
		if err != nil {
			return err
		}
		r, err := row.Decode(buf)
		if err != nil {
			return err
		}
		if err := emit(r); err != nil {
			return err
		}
		if err := cur.Advance(); err != nil {
			return err
		}
	}
	return nil
}

// PrintTree writes a structural dump of the tree to w, for the `.btree`
// dot-command.
func (e *Engine) PrintTree(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return common.ErrClosed
	}

	dump, err := e.tree.Dump()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, dump)
	return err
}

// Stats reports pager bookkeeping plus a live key count, for the
// `.constants` dot-command.
func (e *Engine) Stats() (common.Stats, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return common.Stats{}, common.ErrClosed
	}

	n, err := e.tree.CountKeys()
	if err != nil {
		return common.Stats{}, err
	}

	s := e.tree.Stats()
	return common.Stats{
		NumKeys:    n,
		NumPages:   s.NumPages,
		PageReads:  s.PageReads,
		PageWrites: s.PageWrites,
		CacheHits:  s.CacheHits,
	}, nil
}
