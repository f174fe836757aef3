package httpapi

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"INFO":  LevelInfo,
		"debug": LevelDebug,
		"1":     LevelDebug,
		"weird": LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest("GET", "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	defer SetDefaultRequestLogLevel("")
	SetDefaultRequestLogLevel("info")
	if got := requestLogLevel(httptest.NewRequest("GET", "/x", nil)); got != LevelInfo {
		t.Fatalf("default level not applied: %v", got)
	}
}

func TestControlOpsLogWithRequestID(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	h := NewMux(&mockService{})
	w := do(h, http.MethodPost, "/infer?log=debug", `{"model":"m","prompt":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	out := buf.String()
	if !strings.Contains(out, `"op":"infer"`) || !strings.Contains(out, `"request_id"`) {
		t.Fatalf("missing infer log line: %q", out)
	}
	if !strings.Contains(out, `"output":"echo:hi"`) {
		t.Fatalf("debug level should log output: %q", out)
	}

	buf.Reset()
	_ = do(h, http.MethodPost, "/infer?log=off", `{"model":"m"}`)
	if buf.Len() != 0 {
		t.Fatalf("log=off should be silent: %q", buf.String())
	}

	buf.Reset()
	_ = do(h, http.MethodDelete, "/models/x?log=error", "")
	if !strings.Contains(buf.String(), `"status":404`) {
		t.Fatalf("error level should log failures: %q", buf.String())
	}
}

func TestInferClientGoneIsLogged(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/infer?log=error", strings.NewReader(`{"model":"m"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewMux(&mockService{block: true}).ServeHTTP(w, req)

	if w.Body.Len() != 0 {
		t.Fatalf("nothing should be written to a gone client: %q", w.Body.String())
	}
	out := buf.String()
	if !strings.Contains(out, `"op":"infer"`) || !strings.Contains(out, `"status":499`) {
		t.Fatalf("missing client-closed log line: %q", out)
	}
}
