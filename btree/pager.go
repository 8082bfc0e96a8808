package btree

import (
	"container/list"
	"fmt"
	"os"

	"github.com/bits-and-blooms/bitset"

	"kvtree/common"
)

// cacheEntry is the LRU list's payload: a resident page and its number.
// It carries the page itself rather than indirecting through a side map,
// since the cache holds few enough pages (MaxNumLoadedPages) that this
// is simpler than a second lookup.
type cacheEntry struct {
	pageNum uint32
	page    *Page
}

// Pager maps page numbers to in-memory buffers, with a bounded resident
// set evicted LRU-first, respecting pins. It keeps a container/list LRU
// plus a lookup map, and tracks pin state with a bitset.BitSet sized to
// TableMaxPages. It carries no mutex; the engine above it serializes
// access to a single open file.
type Pager struct {
	file       *os.File
	fileLength int64
	numPages   uint32
	free       freeList

	cache  map[uint32]*list.Element
	lru    *list.List
	pinned *bitset.BitSet

	stats struct {
		pageReads  int64
		pageWrites int64
		cacheHits  int64
	}
}

// OpenPager opens or creates the database file at path and loads its header.
func OpenPager(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("btree: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("btree: stat %s: %w", path, err)
	}

	p := &Pager{
		file:   f,
		cache:  make(map[uint32]*list.Element, MaxNumLoadedPages),
		lru:    list.New(),
		pinned: bitset.New(TableMaxPages),
	}

	size := info.Size()
	if size == 0 {
		return p, nil
	}
	if size < HeaderSize {
		f.Close()
		return nil, fmt.Errorf("btree: %s: truncated header: %w", path, common.ErrCorrupt)
	}

	header := make([]byte, HeaderSize)
	if _, err := f.ReadAt(header, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("btree: read header of %s: %w", path, err)
	}
	p.free = decodeHeader(header)
	p.fileLength = size
	p.numPages = uint32((size - HeaderSize) / PageSize)

	return p, nil
}

func (p *Pager) pageOffset(pageNum uint32) int64 {
	return HeaderSize + int64(pageNum)*PageSize
}

// NumPages reports how many pages have ever been claimed in this file.
func (p *Pager) NumPages() uint32 { return p.numPages }

// Pin marks pageNum as not evictable. Unpin clears that mark. GetPage
// already pins on every call (and records the pin into scope); these are
// exposed separately so a Scope can release pins it no longer needs
// without dropping the page from cache.
func (p *Pager) Pin(pageNum uint32)   { p.pinned.Set(uint(pageNum)) }
func (p *Pager) Unpin(pageNum uint32) { p.pinned.Clear(uint(pageNum)) }

func (p *Pager) isPinned(pageNum uint32) bool { return p.pinned.Test(uint(pageNum)) }

// GetPage pins pageNum into scope and returns its buffer, loading it from
// disk (or creating a zeroed one, for a page past the current file
// length) if it isn't already resident.
func (p *Pager) GetPage(pageNum uint32, scope *Scope) (*Page, error) {
	if pageNum >= TableMaxPages {
		return nil, fmt.Errorf("btree: page number %d exceeds TableMaxPages (%d): %w", pageNum, TableMaxPages, common.ErrTableFull)
	}

	p.Pin(pageNum)
	scope.record(pageNum)

	if elem, ok := p.cache[pageNum]; ok {
		p.lru.MoveToFront(elem)
		p.stats.cacheHits++
		return elem.Value.(*cacheEntry).page, nil
	}

	var page *Page
	if p.pageOffset(pageNum)+PageSize <= p.fileLength {
		buf := make([]byte, PageSize)
		if _, err := p.file.ReadAt(buf, p.pageOffset(pageNum)); err != nil {
			return nil, fmt.Errorf("btree: read page %d: %w", pageNum, err)
		}
		page = loadPage(buf)
		p.stats.pageReads++
	} else {
		page = &Page{}
	}

	elem := p.lru.PushFront(&cacheEntry{pageNum: pageNum, page: page})
	p.cache[pageNum] = elem

	if pageNum >= p.numPages {
		p.numPages = pageNum + 1
	}

	if p.lru.Len() > MaxNumLoadedPages {
		if err := p.evict(); err != nil {
			return nil, err
		}
	}

	return page, nil
}

// evict writes back and drops the least-recently-used unpinned page.
// Pinned pages are skipped from the tail forward; if every
// resident page is pinned, eviction cannot make progress — a bug in the
// caller (a traversal holding more than MaxNumLoadedPages pages at once)
// rather than something the pager can recover from.
func (p *Pager) evict() error {
	for e := p.lru.Back(); e != nil; e = e.Prev() {
		entry := e.Value.(*cacheEntry)
		if p.isPinned(entry.pageNum) {
			continue
		}
		if err := p.writePage(entry.pageNum, entry.page); err != nil {
			return err
		}
		delete(p.cache, entry.pageNum)
		p.lru.Remove(e)
		return nil
	}
	return fmt.Errorf("btree: cache exhausted: every resident page is pinned (%d of %d slots)", p.lru.Len(), MaxNumLoadedPages)
}

func (p *Pager) writePage(pageNum uint32, page *Page) error {
	off := p.pageOffset(pageNum)
	if _, err := p.file.WriteAt(page.Bytes(), off); err != nil {
		return fmt.Errorf("btree: write page %d: %w", pageNum, err)
	}
	p.stats.pageWrites++
	if end := off + PageSize; end > p.fileLength {
		p.fileLength = end
	}
	return nil
}

// Flush writes the resident buffer for pageNum back to disk, if resident.
func (p *Pager) Flush(pageNum uint32) error {
	elem, ok := p.cache[pageNum]
	if !ok {
		return nil
	}
	entry := elem.Value.(*cacheEntry)
	return p.writePage(entry.pageNum, entry.page)
}

// GetUnusedPageNum returns a page number to use for a new page: a
// reclaimed one if the free stack has one, else the next never-used
// number. The caller must immediately GetPage it and
// initialize its header — the number isn't claimed against NumPages
// until GetPage actually materializes it.
func (p *Pager) GetUnusedPageNum() uint32 {
	if pageNum, ok := p.free.pop(); ok {
		return pageNum
	}
	return p.numPages
}

// FreePage pushes pageNum onto the free stack for future reuse. The
// page's on-disk bytes are left untouched; whoever reclaims the number
// must reinitialize the page's contents.
func (p *Pager) FreePage(pageNum uint32) {
	p.free.push(pageNum)
}

// Close flushes every resident page and the file header, then closes the
// underlying file. Every resident page is flushed unconditionally — this
// format tracks no per-page dirty bit.
func (p *Pager) Close() error {
	for e := p.lru.Front(); e != nil; e = e.Next() {
		entry := e.Value.(*cacheEntry)
		if err := p.writePage(entry.pageNum, entry.page); err != nil {
			return err
		}
	}
	if err := p.writeHeader(); err != nil {
		return err
	}
	return p.file.Close()
}

func (p *Pager) writeHeader() error {
	buf := make([]byte, HeaderSize)
	p.free.encodeHeader(buf)
	if _, err := p.file.WriteAt(buf, 0); err != nil {
		return fmt.Errorf("btree: write header: %w", err)
	}
	return nil
}

// Stats reports pager bookkeeping counters.
type Stats struct {
	NumPages   uint32
	PageReads  int64
	PageWrites int64
	CacheHits  int64
}

func (p *Pager) Stats() Stats {
	return Stats{
		NumPages:   p.numPages,
		PageReads:  p.stats.pageReads,
		PageWrites: p.stats.pageWrites,
		CacheHits:  p.stats.cacheHits,
	}
}
