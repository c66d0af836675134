// Package buffer implements the pinning buffer manager: the Manager
// contract shared by the Dummy, Direct, and LRU implementations, and the
// PageGuard scoped handle that releases its pin on every exit path.
package buffer

import "github.com/tinyforensics/innodbrecover/internal/innodb/page"

// Manager is the pin/unpin capability set every buffer-manager
// implementation satisfies (spec §4.6). Implementations are not safe for
// concurrent use from multiple goroutines; callers restrict themselves to
// single-threaded access per pass (spec §5).
type Manager interface {
	// Pin returns a scoped reference to the validated page (space_id,
	// page_number). On failure no pin is held and no guard is produced.
	Pin(spaceID, pageNumber uint32) (*PageGuard, error)

	// unpin is invoked exactly once by a PageGuard's Release, never
	// called directly by decoder code.
	unpin(spaceID, pageNumber uint32)
}

// PageGuard is a scoped handle over a pinned page. Callers must call
// Release on every exit path, including error paths, once they are done
// reading Page (spec §9, "scoped resource release").
type PageGuard struct {
	Page     *page.Page
	mgr      Manager
	spaceID  uint32
	pageNum  uint32
	released bool
}

func newGuard(mgr Manager, spaceID, pageNumber uint32, p *page.Page) *PageGuard {
	return &PageGuard{Page: p, mgr: mgr, spaceID: spaceID, pageNum: pageNumber}
}

// Release unpins the guarded page. It is safe to call more than once;
// only the first call has an effect.
func (g *PageGuard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	g.mgr.unpin(g.spaceID, g.pageNum)
}
