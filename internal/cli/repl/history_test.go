package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestHistory_AddGet(t *testing.T) {
	h := NewHistory("")
	h.Add("first")
	h.Add("second")
	h.Add("second")

	if got := len(h.Entries()); got != 2 {
		t.Errorf("len = %d, repeats should collapse", got)
	}
	if h.Get(0) != "second" || h.Get(1) != "first" {
		t.Errorf("Get(0) = %q, Get(1) = %q", h.Get(0), h.Get(1))
	}
	if h.Get(5) != "" || h.Get(-1) != "" {
		t.Error("out of range should return empty")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3
	for i := 0; i < 5; i++ {
		h.Add(fmt.Sprintf("cmd%d", i))
	}

	entries := h.Entries()
	if len(entries) != 3 || entries[0] != "cmd2" {
		t.Errorf("Entries() = %v", entries)
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history")

	h := NewHistory(path)
	h.Add("owner ping")
	h.Add("backend tasks list")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Get(0) != "backend tasks list" {
		t.Errorf("Get(0) = %q", loaded.Get(0))
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "absent"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestHistory_MemoryOnly(t *testing.T) {
	h := NewHistory("")
	h.Add("x")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}
