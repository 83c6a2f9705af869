package registry

import (
	"context"
	"errors"
	"io"
	"testing"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("broken pipe") }
func (failingWriter) Close() error                { return nil }

func pendingCount(p *StdioProvider) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

func TestCallDropsPendingOnContextCancel(t *testing.T) {
	p := NewStdioProvider("primary-analytics", "true", nil, nil)
	p.stdin = nopWriteCloser{io.Discard}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.call(ctx, "tools/list", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if n := pendingCount(p); n != 0 {
		t.Errorf("pending map holds %d abandoned entries, want 0", n)
	}
}

func TestCallDropsPendingOnWriteFailure(t *testing.T) {
	p := NewStdioProvider("primary-analytics", "true", nil, nil)
	p.stdin = failingWriter{}

	if _, err := p.call(context.Background(), "tools/list", nil); err == nil {
		t.Fatal("expected write failure to surface")
	}
	if n := pendingCount(p); n != 0 {
		t.Errorf("pending map holds %d abandoned entries, want 0", n)
	}
}
