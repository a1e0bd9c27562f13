package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := payload{Name: "thermodynamics", Count: 7}
	if err := s.Save("doc-1", in); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var out payload
	if err := s.Load("doc-1", &out); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out != in {
		t.Errorf("expected %+v, got %+v", in, out)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save("doc-1", payload{Name: "old"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Save("doc-1", payload{Name: "new"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var out payload
	if err := s.Load("doc-1", &out); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out.Name != "new" {
		t.Errorf("expected overwrite, got %q", out.Name)
	}
}

func TestStore_IndentedJSON(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save("doc-1", payload{Name: "x", Count: 1}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "doc-1.json"))
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"name\"") {
		t.Errorf("expected indented JSON, got %q", data)
	}
}

func TestStore_List(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"charlie", "alpha", "bravo"} {
		if err := s.Save(id, payload{Name: id}); err != nil {
			t.Fatalf("save %s failed: %v", id, err)
		}
	}
	ids, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"alpha", "bravo", "charlie"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d]: expected %q, got %q", i, want[i], ids[i])
		}
	}
}

func TestStore_ListEmpty(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ids, err := s.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty list, got %v", ids)
	}
}

func TestStore_Delete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Save("doc-1", payload{}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Delete("doc-1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if s.Exists("doc-1") {
		t.Error("expected artifact to be gone after delete")
	}
	// Deleting again is not an error.
	if err := s.Delete("doc-1"); err != nil {
		t.Errorf("expected idempotent delete, got %v", err)
	}
}

func TestStore_InvalidIDs(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"", "../escape", "a/b", `a\b`, "a..b"} {
		if err := s.Save(id, payload{}); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Save(%q): expected ErrInvalidID, got %v", id, err)
		}
		if _, err := s.Raw(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Raw(%q): expected ErrInvalidID, got %v", id, err)
		}
		if err := s.Delete(id); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Delete(%q): expected ErrInvalidID, got %v", id, err)
		}
		if s.Exists(id) {
			t.Errorf("Exists(%q) should be false", id)
		}
	}
}
