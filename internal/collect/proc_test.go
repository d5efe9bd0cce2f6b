package collect

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcCPUDelta(t *testing.T) {
	path := writeFile(t, "stat", "cpu  100 0 100 700 100 0 0 0\ncpu0 1 1 1 1\n")
	src := NewProcCPU(path)
	now := time.UnixMilli(1_000)

	got, err := src.Collect(context.Background(), now)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected baseline call to return nothing, got %v %v", got, err)
	}

	if err := os.WriteFile(path, []byte("cpu  160 0 140 780 120 0 0 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = src.Collect(context.Background(), now.Add(time.Second))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 1 || got[0].Kind != KindPercent {
		t.Fatalf("expected one percent reading, got %v", got)
	}
	// busy +100 of total +200
	if math.Abs(got[0].Value-50) > 1e-9 || got[0].Time != 2000 {
		t.Fatalf("unexpected reading %+v", got[0])
	}
}

func TestProcCPUMissingLine(t *testing.T) {
	src := NewProcCPU(writeFile(t, "stat", "intr 1 2 3\n"))
	if _, err := src.Collect(context.Background(), time.Now()); !errdef.Is(err, errdef.CodeSource) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestProcMem(t *testing.T) {
	body := "MemTotal:       1000 kB\nMemFree:         100 kB\nMemAvailable:    400 kB\n"
	src := NewProcMem(writeFile(t, "meminfo", body))
	got, err := src.Collect(context.Background(), time.UnixMilli(5))
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two readings, got %v", got)
	}
	if got[0].Series != "mem.used" || got[0].Value != 600*1024 || got[0].Kind != KindBytes {
		t.Fatalf("unexpected used reading %+v", got[0])
	}
	if got[1].Series != "mem.available" || got[1].Value != 400*1024 {
		t.Fatalf("unexpected available reading %+v", got[1])
	}

	bad := NewProcMem(writeFile(t, "meminfo", "MemTotal: 10 kB\n"))
	if _, err := bad.Collect(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected error without MemAvailable")
	}
}

func TestSyntheticAndRuntime(t *testing.T) {
	s := Synthetic{Series: "wave", Period: 4 * time.Second, Amplitude: 10, Offset: 50, Kind: KindCount}
	got, _ := s.Collect(context.Background(), time.Unix(1, 0))
	if len(got) != 1 || math.Abs(got[0].Value-60) > 1e-9 {
		t.Fatalf("expected crest of the wave at quarter period, got %v", got)
	}

	rt, err := Runtime{}.Collect(context.Background(), time.Now())
	if err != nil || len(rt) != 2 || rt[1].Value < 1 {
		t.Fatalf("unexpected runtime readings %v %v", rt, err)
	}
}
