package audit

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWithinCapacity(t *testing.T) {
	l := New(16, PolicyDropOldest)
	n, err := l.Write([]byte("abc\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "abc\n", l.String())
	assert.Equal(t, 4, l.Len())
	assert.Zero(t, l.Dropped())
}

func TestDropOldestEvictsWholeLines(t *testing.T) {
	l := New(12, PolicyDropOldest)
	_, _ = l.Write([]byte("one\n"))
	_, _ = l.Write([]byte("two\n"))
	_, _ = l.Write([]byte("three\n"))
	// "one\n" (4) must go to fit "three\n" (6): 8+6-12 = 2 -> rounds up to the line end.
	assert.Equal(t, "two\nthree\n", l.String())
	assert.Equal(t, uint64(4), l.Dropped())
	assert.LessOrEqual(t, l.Len(), l.Cap())
}

func TestDropOldestOversizedWriteKeepsTail(t *testing.T) {
	l := New(4, PolicyDropOldest)
	_, _ = l.Write([]byte("ab\n"))
	n, err := l.Write([]byte("0123456789"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "6789", l.String())
	assert.Equal(t, uint64(3+10-4), l.Dropped())
}

func TestDropOldestWithoutNewlineDropsAll(t *testing.T) {
	l := New(8, PolicyDropOldest)
	_, _ = l.Write([]byte("abcdef"))
	_, _ = l.Write([]byte("xyz\n"))
	assert.Equal(t, "xyz\n", l.String())
}

func TestRejectPolicy(t *testing.T) {
	l := New(8, PolicyReject)
	_, err := l.Write([]byte("1234567\n"))
	require.NoError(t, err)
	n, err := l.Write([]byte("x"))
	assert.Zero(t, n)
	assert.True(t, IsResourceExhausted(err))
	assert.Equal(t, "1234567\n", l.String())
	assert.Equal(t, uint64(1), l.Rejected())
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyDropOldest, "drop-oldest": PolicyDropOldest, "reject": PolicyReject} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q)=%q,%v", in, got, err)
		}
	}
	if _, err := ParsePolicy("truncate"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}

func TestNewDefaults(t *testing.T) {
	l := New(0, "")
	if l.Cap() != DefaultCapacity || l.Policy() != PolicyDropOldest {
		t.Fatalf("unexpected defaults: cap=%d policy=%q", l.Cap(), l.Policy())
	}
}

func TestConcurrentWritesStayBounded(t *testing.T) {
	l := New(256, PolicyDropOldest)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = l.Write([]byte("event line\n"))
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, l.Len(), 256)
	for _, line := range strings.Split(strings.TrimSuffix(l.String(), "\n"), "\n") {
		assert.Equal(t, "event line", line)
	}
}

func TestWriteTo(t *testing.T) {
	l := New(32, PolicyDropOldest)
	_, _ = l.Write([]byte("hello\n"))
	var buf bytes.Buffer
	n, err := l.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	assert.Equal(t, "hello\n", buf.String())
}
