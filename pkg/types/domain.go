package types

// ModelSummary is a point-in-time view of one loaded model.
type ModelSummary struct {
	// Per-load identifier; changes when a model is replaced.
	// example: 5f0c6c1e-8d3b-4b5e-9a55-0d8f3c9e2a11
	ID string `json:"id" example:"5f0c6c1e-8d3b-4b5e-9a55-0d8f3c9e2a11"`
	// Unique model name.
	// example: gpt-mini
	Name string `json:"name" example:"gpt-mini"`
	// Identifier the model was loaded from.
	// example: /srv/models/gpt-mini.gguf
	Path string `json:"path" example:"/srv/models/gpt-mini.gguf"`
	// Size of the loaded artifact in bytes.
	// example: 0
	Size uint64 `json:"size" example:"0"`
	// Load time (unix seconds).
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at" example:"1700000000"`
	// Number of inference dispatches against this model.
	// example: 3
	InferenceCount uint64 `json:"inference_count" example:"3"`
	// Time of the most recent dispatch (unix nanoseconds, 0 if none).
	// example: 1700000000123456789
	LastInferenceTime int64 `json:"last_inference_time" example:"1700000000123456789"`
}

// Artifact is a model file discovered on disk.
type Artifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}
