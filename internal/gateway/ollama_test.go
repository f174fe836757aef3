package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"modelcore/internal/registry"
)

func TestOllamaCompute_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if req.Model != "llama3" || req.Prompt != "hi" || req.Stream {
			t.Errorf("unexpected body: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(generateResponse{Response: "hello", Done: true})
	}))
	defer srv.Close()

	c := NewOllamaCompute(srv.URL+"/", time.Second)
	out, err := c.Compute(context.Background(), registry.Record{Name: "llama3"}, "hi")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if out != "hello" {
		t.Fatalf("got %q", out)
	}
}

func TestOllamaCompute_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model missing", http.StatusNotFound)
	}))
	defer srv.Close()
	c := NewOllamaCompute(srv.URL, time.Second)
	if _, err := c.Compute(context.Background(), registry.Record{Name: "m"}, "hi"); !IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestOllamaCompute_BodyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateResponse{Error: "out of memory"})
	}))
	defer srv.Close()
	c := NewOllamaCompute(srv.URL, time.Second)
	if _, err := c.Compute(context.Background(), registry.Record{Name: "m"}, "hi"); !IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestOllamaCompute_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := NewOllamaCompute(url, time.Second)
	if _, err := c.Compute(context.Background(), registry.Record{Name: "m"}, "hi"); !IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestNewOllamaCompute_DefaultURL(t *testing.T) {
	if c := NewOllamaCompute("", 0); c.BaseURL != DefaultOllamaURL {
		t.Fatalf("got %q", c.BaseURL)
	}
}
