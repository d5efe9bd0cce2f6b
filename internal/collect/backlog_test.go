package collect

import "testing"

func TestBacklogEvictsOldest(t *testing.T) {
	b := newBacklog(3)
	if got := b.snapshot(); got != nil {
		t.Fatalf("expected empty snapshot, got %q", got)
	}
	for _, f := range []string{"a", "b", "c", "d", "e"} {
		b.add([]byte(f))
	}
	got := b.snapshot()
	want := []string{"c", "d", "e"}
	if len(got) != len(want) {
		t.Fatalf("expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if string(got[i]) != want[i] {
			t.Fatalf("frame %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestBacklogMinimumSize(t *testing.T) {
	b := newBacklog(0)
	b.add([]byte("x"))
	b.add([]byte("y"))
	if got := b.snapshot(); len(got) != 1 || string(got[0]) != "y" {
		t.Fatalf("expected only the newest frame, got %q", got)
	}
}
