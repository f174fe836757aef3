// Package views renders read-only text projections of the model registry.
// Every projection is a pure function of one registry.Snapshot, so counts and
// totals shown together always agree.
package views

import (
	"fmt"
	"strconv"
	"strings"

	"modelcore/internal/registry"
)

// Source yields consistent registry snapshots.
type Source interface {
	Snapshot() registry.Snapshot
}

// Summary describes the most recently loaded model, or nothing when the
// registry is empty.
func Summary(s registry.Snapshot) string {
	m, ok := s.Latest()
	if !ok {
		return ""
	}
	return fmt.Sprintf("model: %s loaded at %d\n", m.Name, m.LoadedAt)
}

// Listing prints one line per model: name, size, loaded_at, inference_count.
func Listing(s registry.Snapshot) string {
	var b strings.Builder
	for _, m := range s.Models {
		fmt.Fprintf(&b, "%s %d %d %d\n", m.Name, m.Size, m.LoadedAt, m.InferenceCount)
	}
	return b.String()
}

// Aggregate prints the total byte count of all loaded models.
func Aggregate(s registry.Snapshot) string {
	return strconv.FormatUint(s.TotalBytes, 10) + "\n"
}

// Reporter renders views on demand from a Source, one snapshot per call.
type Reporter struct {
	src Source
}

func NewReporter(src Source) *Reporter { return &Reporter{src: src} }

func (r *Reporter) Summary() string   { return Summary(r.src.Snapshot()) }
func (r *Reporter) Listing() string   { return Listing(r.src.Snapshot()) }
func (r *Reporter) Aggregate() string { return Aggregate(r.src.Snapshot()) }
