package sourceload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReadsContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "program.слово")
	if err := os.WriteFile(path, []byte("ВЕРНИСЬ"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	src, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if src.Content() != "ВЕРНИСЬ" {
		t.Errorf("Content() = %q, want %q", src.Content(), "ВЕРНИСЬ")
	}
	if src.Path() != path {
		t.Errorf("Path() = %q, want %q", src.Path(), path)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.слово")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}

func TestLoadRejectsDirectory(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for directory path, got nil")
	}
}

func TestWarnedFlagsUnconventionalExtension(t *testing.T) {
	if Warned("prog.слово") {
		t.Error("expected no warning for the conventional extension")
	}
	if !Warned("prog.txt") {
		t.Error("expected a warning for a non-conventional extension")
	}
}

func TestReadInclude(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	content, err := ReadInclude(path)
	if err != nil {
		t.Fatalf("ReadInclude() returned error: %v", err)
	}
	if len(content) != 3 {
		t.Errorf("len(content) = %d, want 3", len(content))
	}
}
