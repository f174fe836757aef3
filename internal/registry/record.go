package registry

import (
	"time"

	"modelcore/pkg/types"
)

// record is owned by the Registry and only touched under its lock.
type record struct {
	id       string
	name     string
	path     string
	binary   []byte // never materialized yet
	size     uint64
	loadedAt time.Time

	inferenceCount uint64
	lastInference  time.Time
}

// Record is a read-only copy of a loaded model.
type Record struct {
	ID             string
	Name           string
	Path           string
	Size           uint64
	Materialized   bool
	LoadedAt       time.Time
	InferenceCount uint64
	LastInference  time.Time
}

func (r *record) view() Record {
	return Record{
		ID:             r.id,
		Name:           r.name,
		Path:           r.path,
		Size:           r.size,
		Materialized:   r.binary != nil,
		LoadedAt:       r.loadedAt,
		InferenceCount: r.inferenceCount,
		LastInference:  r.lastInference,
	}
}

// Summary converts the record to its API representation.
func (r Record) Summary() types.ModelSummary {
	var last int64
	if !r.LastInference.IsZero() {
		last = r.LastInference.UnixNano()
	}
	return types.ModelSummary{
		ID:                r.ID,
		Name:              r.Name,
		Path:              r.Path,
		Size:              r.Size,
		LoadedAt:          r.LoadedAt.Unix(),
		InferenceCount:    r.InferenceCount,
		LastInferenceTime: last,
	}
}

// Snapshot is a consistent read of the whole registry taken under one lock hold.
type Snapshot struct {
	Models     []types.ModelSummary
	TotalBytes uint64
	TakenAt    time.Time
}

// Latest returns the most recently loaded model, if any.
func (s Snapshot) Latest() (types.ModelSummary, bool) {
	if len(s.Models) == 0 {
		return types.ModelSummary{}, false
	}
	return s.Models[len(s.Models)-1], true
}
