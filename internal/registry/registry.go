package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"modelcore/internal/common/fsutil"
	"modelcore/pkg/types"
)

// Config encapsulates all tunables for Registry construction.
type Config struct {
	// Now is the clock used for load and inference timestamps.
	Now func() time.Time
	// StatArtifacts fills Size from the file named by the load identifier.
	StatArtifacts bool
	Publisher     Publisher
	Logger        zerolog.Logger
}

// Registry is the exclusive owner of every loaded model.
type Registry struct {
	mu      sync.Mutex
	records []*record // insertion order
	byName  map[string]*record
	closed  bool
	// pubMu is taken before mu is released and held across Publish so
	// events reach publishers in the order their mutations committed.
	pubMu sync.Mutex

	now           func() time.Time
	statArtifacts bool
	publisher     Publisher
	log           zerolog.Logger
}

// New returns an empty registry with default settings.
func New() *Registry { return NewWithConfig(Config{Logger: zerolog.Nop()}) }

// NewWithConfig constructs a Registry from Config.
func NewWithConfig(cfg Config) *Registry {
	r := &Registry{
		byName:        make(map[string]*record),
		now:           cfg.Now,
		statArtifacts: cfg.StatArtifacts,
		publisher:     cfg.Publisher,
		log:           cfg.Logger,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.publisher == nil {
		r.publisher = noopPublisher{}
	}
	return r
}

// SetPublisher replaces the event publisher.
func (r *Registry) SetPublisher(p Publisher) {
	if p == nil {
		p = noopPublisher{}
	}
	r.mu.Lock()
	r.publisher = p
	r.mu.Unlock()
}

type loadOptions struct {
	name    string
	replace bool
}

// LoadOption customizes a single Load call.
type LoadOption func(*loadOptions)

// WithReplace lets Load replace an existing model of the same name.
func WithReplace() LoadOption { return func(o *loadOptions) { o.replace = true } }

// WithName registers the model under name instead of the raw identifier.
func WithName(name string) LoadOption { return func(o *loadOptions) { o.name = name } }

// Load registers a model. The identifier doubles as the name unless WithName
// is given. A taken name fails with ErrAlreadyLoaded; with WithReplace the old
// record is dropped and the new one is appended as the most recent.
func (r *Registry) Load(identifier string, opts ...LoadOption) (Record, error) {
	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	name := o.name
	if name == "" {
		name = identifier
	}
	if err := ValidateName(name); err != nil {
		return Record{}, err
	}
	var size uint64
	if r.statArtifacts {
		size = artifactSize(identifier)
	}
	rec := &record{
		id:       uuid.NewString(),
		name:     name,
		path:     identifier,
		size:     size,
		loadedAt: r.now(),
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Record{}, fmt.Errorf("load %s: %w", name, ErrClosed)
	}
	old, exists := r.byName[name]
	if exists && !o.replace {
		r.mu.Unlock()
		return Record{}, fmt.Errorf("load %s: %w", name, ErrAlreadyLoaded)
	}
	if exists {
		r.removeLocked(old)
	}
	r.records = append(r.records, rec)
	r.byName[name] = rec
	out := rec.view()
	pub := r.publisher
	r.pubMu.Lock()
	r.mu.Unlock()
	defer r.pubMu.Unlock()

	ev := Event{Name: EventLoad, Model: name, ID: out.ID, At: out.LoadedAt, Fields: map[string]any{"path": identifier, "size": size}}
	if exists {
		ev.Name = EventReplace
		ev.Fields["replaced_id"] = old.id
	}
	pub.Publish(ev)
	r.log.Info().Str("model", name).Str("id", out.ID).Uint64("size", size).Bool("replaced", exists).Msg("model loaded")
	return out, nil
}

// Unload removes the named model and reports whether it was loaded.
// A miss is not an error and publishes nothing.
func (r *Registry) Unload(name string) bool {
	r.mu.Lock()
	rec, ok := r.byName[name]
	if !ok {
		r.mu.Unlock()
		return false
	}
	r.removeLocked(rec)
	pub := r.publisher
	r.pubMu.Lock()
	r.mu.Unlock()
	defer r.pubMu.Unlock()

	pub.Publish(Event{Name: EventUnload, Model: name, ID: rec.id, At: r.now(), Fields: map[string]any{}})
	r.log.Info().Str("model", name).Str("id", rec.id).Msg("model unloaded")
	return true
}

// removeLocked drops rec from both indexes. Caller holds r.mu.
func (r *Registry) removeLocked(rec *record) {
	for i, cur := range r.records {
		if cur == rec {
			r.records = append(r.records[:i], r.records[i+1:]...)
			break
		}
	}
	delete(r.byName, rec.name)
	rec.binary = nil
}

// Lookup returns a copy of the named record.
func (r *Registry) Lookup(name string) (Record, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byName[name]
	if !ok {
		return Record{}, false
	}
	return rec.view(), true
}

// RecordInference resolves name and, in the same critical section, bumps its
// inference count and last inference time. The count tracks dispatches, not
// successful computations.
func (r *Registry) RecordInference(name string) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byName[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	rec.inferenceCount++
	rec.lastInference = r.now()
	return rec.view(), nil
}

// List returns summaries of every loaded model in insertion order.
func (r *Registry) List() []types.ModelSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summariesLocked()
}

func (r *Registry) summariesLocked() []types.ModelSummary {
	out := make([]types.ModelSummary, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, rec.view().Summary())
	}
	return out
}

// TotalBytes sums the size of every loaded model.
func (r *Registry) TotalBytes() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total uint64
	for _, rec := range r.records {
		total += rec.size
	}
	return total
}

// Snapshot returns the listing and the byte total from a single lock hold.
func (r *Registry) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{Models: r.summariesLocked(), TakenAt: r.now()}
	for _, m := range s.Models {
		s.TotalBytes += m.Size
	}
	return s
}

// Len returns the number of loaded models.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close tears the registry down, destroying every record. Each one is
// reported as an unload with ReasonTeardown. Close is idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	recs := r.records
	r.records = nil
	r.byName = make(map[string]*record)
	pub := r.publisher
	r.pubMu.Lock()
	r.mu.Unlock()
	defer r.pubMu.Unlock()

	at := r.now()
	for _, rec := range recs {
		rec.binary = nil
		pub.Publish(Event{Name: EventUnload, Model: rec.name, ID: rec.id, At: at, Reason: ReasonTeardown, Fields: map[string]any{}})
	}
	r.log.Info().Int("models", len(recs)).Msg("registry closed")
	return nil
}

// artifactSize returns the size of path, or 0 if it is not a regular file.
func artifactSize(path string) uint64 {
	n, ok := fsutil.RegularFileSize(path)
	if !ok {
		return 0
	}
	return uint64(n)
}
