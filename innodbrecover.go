// Package innodbrecover is the small, stable public surface of the
// forensic tablespace decoder: enough to open a tablespace directory,
// fetch an index page from it, and decode a conventional record against
// a table definition. All actual decoding logic lives in the
// internal/innodb subpackages named in SPEC_FULL.md §2; this package is
// a thin composition layer external collaborators (a CREATE TABLE
// parser, CLI front-ends) build on (spec.md §1).
package innodbrecover

import (
	"github.com/tinyforensics/innodbrecover/internal/config"
	"github.com/tinyforensics/innodbrecover/internal/diag"
	"github.com/tinyforensics/innodbrecover/internal/innodb/buffer"
	"github.com/tinyforensics/innodbrecover/internal/innodb/errs"
	"github.com/tinyforensics/innodbrecover/internal/innodb/index"
	"github.com/tinyforensics/innodbrecover/internal/innodb/page"
	"github.com/tinyforensics/innodbrecover/internal/innodb/row"
	"github.com/tinyforensics/innodbrecover/internal/innodb/table"
)

// Tablespace is a resolved buffer manager rooted at a tablespace
// directory, ready to serve index pages and decode rows from them.
type Tablespace struct {
	mgr      buffer.Manager
	cfg      *config.Config
	log      *diag.Logger
	lastSpace uint32
}

// Open resolves a buffer manager (Dummy, Direct, or LRU, per cfg.Buffer)
// rooted at dir. A nil cfg uses config.Defaults().
func Open(dir string, cfg *config.Config) (*Tablespace, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if dir == "" {
		dir = cfg.Dir
	}

	var mgr buffer.Manager
	switch cfg.Buffer {
	case config.BufferDummy:
		mgr = buffer.NewDummy()
	case config.BufferDirect:
		mgr = buffer.NewDirect(dir)
	case config.BufferLRU, "":
		mgr = buffer.NewLRU(dir, cfg.LRUFrames)
	default:
		return nil, errs.New(errs.InvalidPage, "unrecognised buffer kind %q", cfg.Buffer)
	}

	return &Tablespace{mgr: mgr, cfg: cfg, log: diag.Default()}, nil
}

// SetLogger swaps in a caller-supplied diagnostics logger.
func (t *Tablespace) SetLogger(l *diag.Logger) {
	if l != nil {
		t.log = l
	}
}

// IndexPage pins and decodes the index page at (spaceID, pageNumber).
// The returned *index.Page borrows its underlying buffer from the guard,
// which this call releases before returning per spec §9 — callers must
// not use index pages across a subsequent Pin of the buffer manager if
// the manager is capacity-bounded (LRU) and the frame gets recycled; for
// LRU-backed tablespaces, decode everything needed from the page before
// fetching another.
func (t *Tablespace) IndexPage(spaceID, pageNumber uint32) (*index.Page, error) {
	g, err := t.mgr.Pin(spaceID, pageNumber)
	if err != nil {
		return nil, err
	}
	defer g.Release()

	if !g.Page.ValidChecksum() && t.cfg.Checksum == config.Strict {
		return nil, errs.New(errs.InvalidChecksum, "space %d page %d failed checksum validation", spaceID, pageNumber)
	}
	if !g.Page.ValidChecksum() {
		t.log.Printf("space %d page %d: stored checksum matches neither reference function", spaceID, pageNumber)
	}

	ip, err := index.Wrap(g.Page)
	if err != nil {
		return nil, err
	}
	t.lastSpace = spaceID
	return ip, nil
}

// DecodeRow reconstructs a Row from rec against def, recovering any
// externally-stored fields through the tablespace's buffer manager. Each
// extern field is recovered from the space id and page number recorded in
// its own extern reference.
func (t *Tablespace) DecodeRow(def *table.Definition, rec *index.Record) (*row.Row, error) {
	d := row.NewDecoder(t.mgr, t.lastSpace, t.log)
	return d.Decode(def, rec)
}

// page.Size is re-exported for callers carving raw page streams; it is
// simply the fixed 16 KiB page size this module operates over.
const PageSize = page.Size
