package buffer

import "testing"

func TestDummyPinAlwaysFails(t *testing.T) {
	d := NewDummy()
	if _, err := d.Pin(0, 0); err == nil {
		t.Fatalf("expected Pin to fail on a Dummy manager")
	}
	if _, err := d.Pin(7, 42); err == nil {
		t.Fatalf("expected Pin to fail on a Dummy manager")
	}
}

func TestDummyUnpinPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected unpin on Dummy to panic")
		}
	}()
	d := NewDummy()
	d.unpin(0, 0)
}
