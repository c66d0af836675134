package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	c := Defaults()
	if c.Dir != "." {
		t.Errorf("Dir = %q, want \".\"", c.Dir)
	}
	if c.LRUFrames != 16 {
		t.Errorf("LRUFrames = %d, want 16", c.LRUFrames)
	}
	if c.Checksum != Tolerant {
		t.Errorf("Checksum = %q, want %q", c.Checksum, Tolerant)
	}
	if c.Buffer != BufferLRU {
		t.Errorf("Buffer = %q, want %q", c.Buffer, BufferLRU)
	}
}

func TestLoadFillsInMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "dir: /tablespaces\nchecksum_policy: strict\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Dir != "/tablespaces" {
		t.Errorf("Dir = %q, want /tablespaces", c.Dir)
	}
	if c.Checksum != Strict {
		t.Errorf("Checksum = %q, want strict", c.Checksum)
	}
	// Fields the file didn't specify still get defaults.
	if c.LRUFrames != 16 {
		t.Errorf("LRUFrames = %d, want default 16", c.LRUFrames)
	}
	if c.Buffer != BufferLRU {
		t.Errorf("Buffer = %q, want default lru", c.Buffer)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected Load to fail for a missing file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("dir: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected Load to fail on malformed YAML")
	}
}
