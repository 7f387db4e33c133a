package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("Expected error for empty base path")
	}
}

func TestDiskStore_ReadMissing(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	if _, err := s.Read("isCollapsed"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if s.Has("isCollapsed") {
		t.Error("Expected Has to be false for missing key")
	}
}

func TestDiskStore_WriteReadErase(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}

	if err := s.Write("autoHide.enabled", []byte("true")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := s.Read("autoHide.enabled")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "true" {
		t.Errorf("Expected %q, got %q", "true", got)
	}

	if _, err := os.Stat(filepath.Join(dir, "autoHide.enabled")); err != nil {
		t.Errorf("Expected value file on disk: %v", err)
	}

	if err := s.Erase("autoHide.enabled"); err != nil {
		t.Fatalf("Erase failed: %v", err)
	}
	if s.Has("autoHide.enabled") {
		t.Error("Expected key to be gone after Erase")
	}

	if err := s.Erase("autoHide.enabled"); err != nil {
		t.Errorf("Erase of missing key should be a no-op, got %v", err)
	}
}

func TestDiskStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	if err := SetFloat(s, "autoHide.delaySeconds", 7.5); err != nil {
		t.Fatalf("SetFloat failed: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	got, err := Float(reopened, "autoHide.delaySeconds", 5.0)
	if err != nil {
		t.Fatalf("Float failed: %v", err)
	}
	if got != 7.5 {
		t.Errorf("Expected 7.5, got %v", got)
	}
}

func TestTypedHelpers(t *testing.T) {
	s := NewMemory()

	b, err := Bool(s, "isCollapsed", true)
	if !errors.Is(err, ErrNotFound) || !b {
		t.Errorf("Expected default true with ErrNotFound, got %v, %v", b, err)
	}

	if err := SetBool(s, "isCollapsed", false); err != nil {
		t.Fatalf("SetBool failed: %v", err)
	}
	b, err = Bool(s, "isCollapsed", true)
	if err != nil || b {
		t.Errorf("Expected false, got %v (err %v)", b, err)
	}

	if err := SetInt(s, "position.tuck.separator", 3); err != nil {
		t.Fatalf("SetInt failed: %v", err)
	}
	n, err := Int(s, "position.tuck.separator", 0)
	if err != nil || n != 3 {
		t.Errorf("Expected 3, got %d (err %v)", n, err)
	}

	s.Write("autoHide.delaySeconds", []byte("soon"))
	f, err := Float(s, "autoHide.delaySeconds", 5.0)
	if err == nil {
		t.Error("Expected decode error for malformed float")
	}
	if f != 5.0 {
		t.Errorf("Expected default 5.0 on decode error, got %v", f)
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	s := NewMemory()
	buf := []byte("true")
	s.Write("k", buf)
	buf[0] = 'X'

	got, _ := s.Read("k")
	if string(got) != "true" {
		t.Errorf("Expected stored value to be isolated from caller buffer, got %q", got)
	}
	if len(s.Keys()) != 1 {
		t.Errorf("Expected 1 key, got %d", len(s.Keys()))
	}
}
