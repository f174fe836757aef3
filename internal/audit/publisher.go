package audit

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"modelcore/internal/registry"
)

// Publisher writes one line per registry event to an audit sink:
//
//	2024-01-02T15:04:05Z load gpt-mini
//	2024-01-02T15:05:00Z unload gpt-mini reason=teardown
type Publisher struct {
	w   io.Writer
	log zerolog.Logger
}

// NewPublisher returns a Publisher writing to w. Write failures are logged
// at warn level and otherwise ignored.
func NewPublisher(w io.Writer, log zerolog.Logger) *Publisher {
	return &Publisher{w: w, log: log}
}

func (p *Publisher) Publish(e registry.Event) {
	if _, err := io.WriteString(p.w, FormatLine(e)); err != nil {
		p.log.Warn().Err(err).Str("event", e.Name).Str("model", e.Model).Msg("audit write failed")
	}
}

// FormatLine renders e as a single newline-terminated audit line.
func FormatLine(e registry.Event) string {
	at := e.At
	if at.IsZero() {
		at = time.Now()
	}
	var b strings.Builder
	b.WriteString(at.UTC().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(e.Name)
	b.WriteByte(' ')
	b.WriteString(e.Model)
	if e.Reason != "" {
		b.WriteString(" reason=")
		b.WriteString(e.Reason)
	}
	b.WriteByte('\n')
	return b.String()
}
