package registry

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestScanDir_FiltersArtifacts(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"a.gguf",
		"b.GGUF", // case-insensitive
		"c.onnx",
		"not-model.txt",
		"readme.md",
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("xx"), 0o644); err != nil {
			t.Fatalf("write temp file: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.gguf"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	arts, err := ScanDir(dir)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(arts) != 3 {
		t.Fatalf("expected 3 artifacts, got %+v", arts)
	}
	if arts[0].Name != "a.gguf" || arts[0].Size != 2 || !filepath.IsAbs(arts[0].Path) {
		t.Fatalf("unexpected first artifact: %+v", arts[0])
	}
}

func TestScanDir_ExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir on this platform: %v", err)
	}
	hTmp, err := os.MkdirTemp(home, "modelcore-registry-*")
	if err != nil {
		t.Skipf("cannot create temp under home: %v", err)
	}
	defer os.RemoveAll(hTmp)
	if err := os.WriteFile(filepath.Join(hTmp, "x.gguf"), []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var tildePath string
	if runtime.GOOS == "windows" {
		tildePath = filepath.Join("~", filepath.Base(hTmp))
	} else {
		tildePath = "~/" + filepath.Base(hTmp)
	}
	arts, err := ScanDir(tildePath)
	if err != nil {
		t.Fatalf("scan error: %v", err)
	}
	if len(arts) != 1 || arts[0].Name != "x.gguf" {
		t.Fatalf("unexpected artifacts: %+v", arts)
	}
}

func TestScanDir_Missing(t *testing.T) {
	if _, err := ScanDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("l", MaxNameLen) + ".gguf"
	for _, f := range []string{"m.gguf", "n.bin", long} {
		if err := os.WriteFile(filepath.Join(dir, f), make([]byte, 10), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	r := NewWithConfig(Config{StatArtifacts: true})
	if _, err := r.Load("m.gguf"); err != nil {
		t.Fatalf("preload: %v", err)
	}
	loaded, err := r.LoadDir(dir)
	if err == nil || !IsInvalidIdentifier(err) {
		t.Fatalf("expected joined invalid identifier error, got %v", err)
	}
	if len(loaded) != 1 || loaded[0].Name != "n.bin" || loaded[0].Size != 10 {
		t.Fatalf("unexpected loaded: %+v", loaded)
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 models, got %d", r.Len())
	}
}
