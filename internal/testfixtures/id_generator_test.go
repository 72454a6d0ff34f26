package testfixtures

import "testing"

func TestIDGenerator(t *testing.T) {
	t.Parallel()

	gen := NewIDGenerator("")
	if got := gen.Next(); got != "id-1" {
		t.Fatalf("expected id-1, got %q", got)
	}
	if got := gen.IntFunc()(); got != 2 {
		t.Fatalf("expected shared counter to yield 2, got %d", got)
	}

	gen.Reset(41)
	if got := gen.NextFunc()(); got != "id-42" {
		t.Fatalf("expected id-42 after reset, got %q", got)
	}

	var nilGen *IDGenerator
	if got := nilGen.NextFunc()(); got != "" {
		t.Fatalf("nil generator should yield empty id, got %q", got)
	}
}
