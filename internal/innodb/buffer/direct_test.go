package buffer

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tinyforensics/innodbrecover/internal/innodb/page"
)

func writeTestTablespace(t *testing.T, dir string, spaceID uint32, numPages int, fill func(pageNumber int, buf []byte)) {
	t.Helper()
	buf := make([]byte, numPages*page.Size)
	for i := 0; i < numPages; i++ {
		p := buf[i*page.Size : (i+1)*page.Size]
		binary.BigEndian.PutUint32(p[4:8], uint32(i))
		if fill != nil {
			fill(i, p)
		}
	}
	path := filepath.Join(dir, fmt.Sprintf("%08d.pages", spaceID))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write tablespace: %v", err)
	}
}

func TestDirectPinReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	writeTestTablespace(t, dir, 3, 2, nil)

	d := NewDirect(dir)
	g, err := d.Pin(3, 1)
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	defer g.Release()
	if g.Page.Header.Offset != 1 {
		t.Errorf("Header.Offset = %d, want 1", g.Page.Header.Offset)
	}
}

func TestDirectPinFailsWhenTablespaceMissing(t *testing.T) {
	d := NewDirect(t.TempDir())
	if _, err := d.Pin(9, 0); err == nil {
		t.Fatalf("expected error pinning a page from a nonexistent tablespace file")
	}
}

// Once a page is cached, Direct never re-reads it from disk, so a later
// on-disk change is invisible to a second Pin of the same page.
func TestDirectNeverEvictsOrRereads(t *testing.T) {
	dir := t.TempDir()
	writeTestTablespace(t, dir, 1, 1, nil)

	d := NewDirect(dir)
	g1, err := d.Pin(1, 0)
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	g1.Release()

	// Corrupt the on-disk file after the first pin.
	path := filepath.Join(dir, "00000001.pages")
	if err := os.WriteFile(path, make([]byte, page.Size/2), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	g2, err := d.Pin(1, 0)
	if err != nil {
		t.Fatalf("second Pin should be served from cache, got error: %v", err)
	}
	defer g2.Release()
	if g2.Page != g1.Page {
		t.Errorf("expected the same cached *page.Page instance on repeat Pin")
	}
}

func TestDirectUnpinIsANoOp(t *testing.T) {
	dir := t.TempDir()
	writeTestTablespace(t, dir, 1, 1, nil)
	d := NewDirect(dir)
	g, err := d.Pin(1, 0)
	if err != nil {
		t.Fatalf("Pin: %v", err)
	}
	g.Release()
	g.Release() // idempotent, must not panic
}
