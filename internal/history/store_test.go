package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "rec.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndSamplesInTimeOrder(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	sess, err := s.BeginSession(ctx, "box", "", time.UnixMilli(1000))
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}

	batches := [][]collect.Reading{
		{{Series: "cpu", Value: 1, Time: 2000, Kind: collect.KindPercent}, {Series: "mem", Value: 9, Time: 2000, Kind: collect.KindBytes}},
		{{Series: "cpu", Value: 0.5, Time: 1500, Kind: collect.KindPercent}},
		{{Series: "cpu", Value: 3, Time: 3000, Kind: collect.KindPercent}},
	}
	for _, b := range batches {
		if err := s.Append(ctx, sess.ID, b); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := s.Samples(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Samples: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 samples, got %v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Time < got[i-1].Time {
			t.Fatalf("samples out of order: %v", got)
		}
	}
	if got[1].Series != "cpu" || got[2].Series != "mem" || got[2].Kind != collect.KindBytes {
		t.Fatalf("expected insertion order for equal times, got %v", got)
	}
}

func TestSessionsNewestFirstAndResolve(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	older, _ := s.BeginSession(ctx, "a", "first", time.UnixMilli(1000))
	newer, _ := s.BeginSession(ctx, "b", "second", time.UnixMilli(5000))
	_ = s.Append(ctx, older.ID, []collect.Reading{{Series: "x", Value: 1, Time: 10}, {Series: "x", Value: 2, Time: 20}})

	list, err := s.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[1].Samples != 2 || list[1].First != 10 || list[1].Last != 20 {
		t.Fatalf("unexpected aggregate for older session: %+v", list[1])
	}
	if !list[1].StartedAt.Equal(time.UnixMilli(1000)) {
		t.Fatalf("unexpected start time %v", list[1].StartedAt)
	}

	latest, err := s.Resolve(ctx, Latest)
	if err != nil || latest.ID != newer.ID {
		t.Fatalf("expected latest to resolve to newest, got %+v %v", latest, err)
	}
	byPrefix, err := s.Resolve(ctx, older.ID[:8])
	if err != nil || byPrefix.ID != older.ID {
		t.Fatalf("expected prefix to resolve, got %+v %v", byPrefix, err)
	}
	if _, err := s.Resolve(ctx, "zzzz"); !errdef.Is(err, errdef.CodeHistory) {
		t.Fatalf("expected history error for unknown ref, got %v", err)
	}
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := openTemp(t)
	sess, _ := s.BeginSession(ctx, "", "", time.Now())
	_ = s.Append(ctx, sess.ID, []collect.Reading{{Series: "x", Value: 1, Time: 1}})

	ok, err := s.Delete(ctx, sess.ID)
	if err != nil || !ok {
		t.Fatalf("expected delete to succeed, got %v %v", ok, err)
	}
	if got, _ := s.Samples(ctx, sess.ID); len(got) != 0 {
		t.Fatalf("expected samples removed with session, got %v", got)
	}
	if ok, _ := s.Delete(ctx, sess.ID); ok {
		t.Fatalf("expected second delete to report nothing removed")
	}
	if _, err := s.Resolve(ctx, Latest); err == nil {
		t.Fatalf("expected error resolving latest with no sessions")
	}
}
