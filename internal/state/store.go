package state

import (
	"log"
	"sort"
	"sync"
)

// PathStore holds committed segments per page (1-based). It is the only
// authoritative copy of the ink.
//
// Every mutation installs a freshly allocated slice for the page, so a
// slice handed out by Page stays valid and unchanged for its holder.
type PathStore struct {
	mu       sync.RWMutex
	pages    map[int][]Segment
	versions map[int]uint64
	bounds   map[int]*GroupBounds
	clock    *Clock

	// OnChange, when set, is called after every mutation, outside the lock.
	OnChange func(Change)
}

func NewPathStore(clock *Clock) *PathStore {
	if clock == nil {
		clock = &Clock{}
	}
	return &PathStore{
		pages:    make(map[int][]Segment),
		versions: make(map[int]uint64),
		bounds:   make(map[int]*GroupBounds),
		clock:    clock,
	}
}

func (ps *PathStore) Clock() *Clock { return ps.clock }

// Commit appends one gesture's segments to a page, preserving order.
func (ps *PathStore) Commit(page int, segs []Segment) {
	if page < 1 || len(segs) == 0 {
		return
	}
	ps.mu.Lock()
	old := ps.pages[page]
	next := make([]Segment, 0, len(old)+len(segs))
	next = append(next, old...)
	next = append(next, segs...)
	for _, s := range segs {
		ps.clock.Observe(s.DrawOrder)
	}
	ch := ps.install(page, next, OpCommit)
	ps.mu.Unlock()

	log.Printf("[STORE] Committed %d segments to page %d (group %d)", len(segs), page, segs[0].DrawOrder)
	ps.notify(ch)
}

// ReplacePage swaps the whole segment list of a page.
func (ps *PathStore) ReplacePage(page int, segs []Segment) {
	if page < 1 {
		return
	}
	next := make([]Segment, len(segs))
	copy(next, segs)

	ps.mu.Lock()
	ch := ps.install(page, next, OpReplace)
	ps.mu.Unlock()
	ps.notify(ch)
}

// ClearPage removes all segments of a page.
func (ps *PathStore) ClearPage(page int) {
	ps.mu.Lock()
	if len(ps.pages[page]) == 0 {
		ps.mu.Unlock()
		return
	}
	ch := ps.install(page, nil, OpClear)
	ps.mu.Unlock()

	log.Printf("[STORE] Cleared page %d", page)
	ps.notify(ch)
}

// ClearAll removes the ink of every page. Draw-order ids keep counting.
func (ps *PathStore) ClearAll() {
	ps.mu.Lock()
	for page := range ps.pages {
		ps.install(page, nil, OpClear)
	}
	ps.mu.Unlock()

	log.Println("[STORE] Cleared all pages")
	ps.notify(Change{Type: OpClear})
}

// Page returns the current segments of a page. The caller must not modify
// the returned slice.
func (ps *PathStore) Page(page int) []Segment {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.pages[page]
}

// Version returns a counter that changes whenever the page changes.
func (ps *PathStore) Version(page int) uint64 {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return ps.versions[page]
}

// Pages returns the page numbers that currently hold ink, ascending.
func (ps *PathStore) Pages() []int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	pages := make([]int, 0, len(ps.pages))
	for p, segs := range ps.pages {
		if len(segs) > 0 {
			pages = append(pages, p)
		}
	}
	sort.Ints(pages)
	return pages
}

// Snapshot returns a copy of the page map. The segment slices are shared.
func (ps *PathStore) Snapshot() map[int][]Segment {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	out := make(map[int][]Segment, len(ps.pages))
	for p, segs := range ps.pages {
		out[p] = segs
	}
	return out
}

// Bounds returns the per-group bounding boxes of a page in page pixels.
func (ps *PathStore) Bounds(page int, width, height float64) *GroupBounds {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	gb := ps.bounds[page]
	if gb == nil || gb.width != width || gb.height != height || gb.version != ps.versions[page] {
		gb = NewGroupBounds(ps.pages[page], width, height)
		gb.version = ps.versions[page]
		ps.bounds[page] = gb
	}
	return gb
}

// Count returns the number of segments stored on a page.
func (ps *PathStore) Count(page int) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.pages[page])
}

func (ps *PathStore) install(page int, segs []Segment, op OpType) Change {
	if len(segs) == 0 {
		delete(ps.pages, page)
	} else {
		ps.pages[page] = segs
	}
	delete(ps.bounds, page)
	ps.versions[page]++
	return Change{Type: op, Page: page, Version: ps.versions[page]}
}

func (ps *PathStore) notify(ch Change) {
	if ps.OnChange != nil {
		ps.OnChange(ch)
	}
}
