package httpapi

import (
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// EnvRequestLog sets the default per-request log level.
const EnvRequestLog = "MODELCORE_REQUEST_LOG"

// zlog is the structured logger used by the HTTP layer. Nop until SetLogger.
var zlog = zerolog.Nop()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug", "1":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// defaultLogLevel seeds from the environment; config reloads may move it
// while requests are in flight.
var defaultLogLevel atomic.Int32

func init() { defaultLogLevel.Store(int32(parseLevel(os.Getenv(EnvRequestLog)))) }

// SetDefaultRequestLogLevel overrides the level used when a request carries
// no ?log= or X-Log-Level.
func SetDefaultRequestLogLevel(s string) { defaultLogLevel.Store(int32(parseLevel(s))) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return LogLevel(defaultLogLevel.Load())
}

// logOp emits one line for a control operation when the request level allows.
// Failures log at LevelError and above; successes need LevelInfo.
func logOp(r *http.Request, lvl LogLevel, op, model string, status int, start time.Time, err error) {
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	ev := zlog.Info()
	if err != nil {
		ev = zlog.Warn().Err(err)
	}
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		ev = ev.Str("request_id", rid)
	}
	ev.Str("op", op).Str("model", model).Int("status", status).Dur("dur", time.Since(start)).Msg(op + " end")
}
