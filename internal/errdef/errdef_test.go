package errdef

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapKeepsCodeThroughChain(t *testing.T) {
	base := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(CodeHistory, base, "append %d", 3))
	if CodeOf(err) != CodeHistory {
		t.Fatalf("expected history code, got %q", CodeOf(err))
	}
	if !Is(err, CodeHistory) {
		t.Fatalf("expected Is to match history code")
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped base error to be reachable")
	}
	if got := err.Error(); got != "outer: history: append 3: boom" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestWrapNil(t *testing.T) {
	if Wrap(CodeConfig, nil, "x") != nil {
		t.Fatalf("expected nil for nil error")
	}
}

func TestNewDefaultsCode(t *testing.T) {
	err := New("", "plain")
	if CodeOf(err) != CodeUnknown {
		t.Fatalf("expected unknown code, got %q", CodeOf(err))
	}
}

func TestSoftLogs(t *testing.T) {
	var got string
	logf := func(format string, args ...any) { got = fmt.Sprintf(format, args...) }
	err := Soft(logf, New(CodeSample, "bad value"))
	if !Is(err, CodeSample) {
		t.Fatalf("expected sample error back, got %v", err)
	}
	if got != "warning: sample: bad value" {
		t.Fatalf("unexpected log line %q", got)
	}
	if Soft(logf, nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}
