package types

// LoadRequest is the body of POST /models.
type LoadRequest struct {
	// Model identifier or artifact path.
	// example: gpt-mini
	Name string `json:"name" example:"gpt-mini"`
	// Replace an already loaded model with the same name instead of failing.
	// example: false
	Replace bool `json:"replace,omitempty" example:"false"`
}

// InferRequest represents an inference request payload.
type InferRequest struct {
	// Model to dispatch to.
	// example: gpt-mini
	Model string `json:"model" example:"gpt-mini"`
	// Prompt text.
	// example: hi
	Prompt string `json:"prompt" example:"hi"`
}

// InferResponse is returned by POST /infer on success.
type InferResponse struct {
	Model          string `json:"model"`
	Output         string `json:"output"`
	InferenceCount uint64 `json:"inference_count"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models     []ModelSummary `json:"models"`
	TotalBytes uint64         `json:"total_bytes"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: model not found: gpt-mini
	Error string `json:"error" example:"model not found: gpt-mini"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
