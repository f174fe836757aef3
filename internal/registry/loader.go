package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"modelcore/internal/common/fsutil"
	"modelcore/pkg/types"
)

// artifactExts lists the file extensions treated as model artifacts.
var artifactExts = []string{".gguf", ".bin", ".onnx", ".safetensors"}

// ScanDir lists model artifacts in dir (non-recursive), sorted by name.
// Name is the file name; Path is the absolute file path.
func ScanDir(dir string) ([]types.Artifact, error) {
	abs, err := fsutil.Resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []types.Artifact
	for _, e := range entries {
		if e.IsDir() || !isArtifact(e.Name()) {
			continue
		}
		var size int64
		if fi, err := e.Info(); err == nil {
			size = fi.Size()
		}
		out = append(out, types.Artifact{Name: e.Name(), Path: filepath.Join(abs, e.Name()), Size: size})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func isArtifact(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range artifactExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// LoadDir loads every artifact found by ScanDir under its file name.
// Models that are already loaded are skipped; other failures are joined.
func (r *Registry) LoadDir(dir string) ([]Record, error) {
	arts, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	var (
		loaded []Record
		errs   []error
	)
	for _, a := range arts {
		rec, err := r.Load(a.Path, WithName(a.Name))
		switch {
		case err == nil:
			loaded = append(loaded, rec)
		case IsAlreadyLoaded(err):
		default:
			errs = append(errs, fmt.Errorf("%s: %w", a.Path, err))
		}
	}
	return loaded, errors.Join(errs...)
}
