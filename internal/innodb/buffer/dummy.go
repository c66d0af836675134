package buffer

import "github.com/tinyforensics/innodbrecover/internal/innodb/errs"

// Dummy always fails Pin. It is the buffer manager for callers that never
// need to follow extern references — e.g. a page_explorer CLI that only
// walks a single index page (spec §4.6).
type Dummy struct{}

// NewDummy constructs a Dummy buffer manager.
func NewDummy() *Dummy { return &Dummy{} }

func (d *Dummy) Pin(spaceID, pageNumber uint32) (*PageGuard, error) {
	return nil, errs.New(errs.PageNotFound, "dummy buffer manager never pins (space %d, page %d)", spaceID, pageNumber)
}

func (d *Dummy) unpin(spaceID, pageNumber uint32) {
	panic("buffer: unpin called on Dummy manager without a matching pin")
}
