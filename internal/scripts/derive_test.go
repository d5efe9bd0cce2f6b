package scripts

import (
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

func quiet(string, ...any) {}

func TestDeriverEval(t *testing.T) {
	d, err := NewDeriver([]Rule{
		{Name: "mem.total", Expr: "mem_used + mem_available"},
		{Name: "mem.pct", Expr: "100 * mem_used / mem_total", Kind: collect.KindPercent},
		{Name: "quoted", Expr: `series["mem.used"] / 1024`},
	}, WithLogf(quiet))
	if err != nil {
		t.Fatalf("NewDeriver: %v", err)
	}
	got, err := d.Eval(map[string]float64{"mem.used": 3072, "mem.available": 1024})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got["mem.total"] != 4096 || got["mem.pct"] != 75 || got["quoted"] != 3 {
		t.Fatalf("unexpected results %v", got)
	}
}

func TestDeriverCompileError(t *testing.T) {
	_, err := NewDeriver([]Rule{{Name: "bad", Expr: "1 +"}})
	if !errdef.Is(err, errdef.CodeScript) {
		t.Fatalf("expected script error, got %v", err)
	}
	if _, err := NewDeriver([]Rule{{Name: "", Expr: "1"}}); err == nil {
		t.Fatalf("expected error for unnamed rule")
	}
}

func TestDeriverSkipsFailingRule(t *testing.T) {
	d, err := NewDeriver([]Rule{
		{Name: "missing", Expr: "nope * 2"},
		{Name: "nan", Expr: "0 / 0"},
		{Name: "ok", Expr: "cpu / 2"},
	}, WithLogf(quiet))
	if err != nil {
		t.Fatalf("NewDeriver: %v", err)
	}
	got, err := d.Eval(map[string]float64{"cpu": 50})
	if !errdef.Is(err, errdef.CodeScript) {
		t.Fatalf("expected script error, got %v", err)
	}
	if _, ok := got["missing"]; ok {
		t.Fatalf("failing rule must not produce a value")
	}
	if got["ok"] != 25 {
		t.Fatalf("expected remaining rule to run, got %v", got)
	}
}

func TestDeriverTimeout(t *testing.T) {
	d, err := NewDeriver([]Rule{{Name: "spin", Expr: "(function(){ while(true){} })()"}},
		WithLogf(quiet), WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("NewDeriver: %v", err)
	}
	if _, err := d.Eval(nil); err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Fatalf("expected timeout error, got %v", err)
	}
	d2, _ := NewDeriver([]Rule{{Name: "one", Expr: "1"}}, WithLogf(quiet))
	if got, err := d2.Eval(nil); err != nil || got["one"] != 1 {
		t.Fatalf("expected a plain rule to evaluate, got %v %v", got, err)
	}
}

func TestApplyAppendsReadings(t *testing.T) {
	var logs []string
	d, _ := NewDeriver([]Rule{{Name: "double", Expr: "console.log('x'), cpu * 2", Kind: collect.KindPercent}},
		WithLogf(func(f string, a ...any) { logs = append(logs, f) }))
	in := []collect.Reading{
		{Series: "cpu", Value: 10, Time: 100},
		{Series: "mem", Value: 1, Time: 120},
	}
	out := d.Apply(in)
	if len(out) != 3 {
		t.Fatalf("expected derived reading appended, got %v", out)
	}
	want := collect.Reading{Series: "double", Value: 20, Time: 120, Kind: collect.KindPercent}
	if out[2] != want {
		t.Fatalf("expected %+v, got %+v", want, out[2])
	}
	if len(logs) != 1 {
		t.Fatalf("expected console output routed to logf, got %v", logs)
	}
}

func TestIdentifier(t *testing.T) {
	cases := map[string]string{
		"cpu":        "cpu",
		"mem.used":   "mem_used",
		"5xx":        "_5xx",
		"go-heap":    "go_heap",
		"":           "_",
		"load avg 1": "load_avg_1",
	}
	for in, want := range cases {
		if got := Identifier(in); got != want {
			t.Fatalf("Identifier(%q): expected %q, got %q", in, want, got)
		}
	}
}
