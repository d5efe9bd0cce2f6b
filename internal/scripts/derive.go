// Package scripts evaluates derived series: JavaScript expressions over the
// latest value of every other series.
package scripts

import (
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/dop251/goja"

	"github.com/unkn0wn-root/sysgraph/internal/collect"
	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

const defaultTimeout = 100 * time.Millisecond

type Rule struct {
	Name string
	Expr string
	Kind collect.Kind
}

type program struct {
	rule Rule
	prog *goja.Program
}

// Deriver is not safe for concurrent use; it owns one goja runtime.
type Deriver struct {
	programs []program
	vm       *goja.Runtime
	latest   map[string]float64
	timeout  time.Duration
	logf     func(string, ...any)
}

type Option func(*Deriver)

func WithLogf(fn func(string, ...any)) Option {
	return func(d *Deriver) {
		if fn != nil {
			d.logf = fn
		}
	}
}

// WithTimeout bounds a single expression evaluation.
func WithTimeout(t time.Duration) Option {
	return func(d *Deriver) {
		if t > 0 {
			d.timeout = t
		}
	}
}

// NewDeriver compiles every rule up front so syntax errors surface at start.
func NewDeriver(rules []Rule, opts ...Option) (*Deriver, error) {
	d := &Deriver{
		vm:      goja.New(),
		latest:  make(map[string]float64),
		timeout: defaultTimeout,
		logf:    log.Printf,
	}
	for _, opt := range opts {
		opt(d)
	}
	for _, r := range rules {
		name := strings.TrimSpace(r.Name)
		script := normalizeScript(r.Expr)
		if name == "" || script == "" {
			return nil, errdef.New(errdef.CodeScript, "derived series needs a name and an expression")
		}
		prog, err := goja.Compile(name, "("+script+")", true)
		if err != nil {
			return nil, errdef.Wrap(errdef.CodeScript, err, "compile %s", name)
		}
		r.Name = name
		d.programs = append(d.programs, program{rule: r, prog: prog})
	}
	d.bindConsole()
	return d, nil
}

func (d *Deriver) Len() int { return len(d.programs) }

// Eval updates the known values and evaluates every rule in order. Later
// rules see the results of earlier ones. A failing rule is reported and
// skipped.
func (d *Deriver) Eval(values map[string]float64) (map[string]float64, error) {
	for k, v := range values {
		d.latest[k] = v
	}
	out := make(map[string]float64, len(d.programs))
	var errs []string
	for _, p := range d.programs {
		v, err := d.run(p)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		out[p.rule.Name] = v
		d.latest[p.rule.Name] = v
	}
	if len(errs) > 0 {
		return out, errdef.New(errdef.CodeScript, "%s", strings.Join(errs, "; "))
	}
	return out, nil
}

// Apply is a collect.Transform: it appends one reading per rule, stamped with
// the newest time in the batch.
func (d *Deriver) Apply(readings []collect.Reading) []collect.Reading {
	if len(d.programs) == 0 || len(readings) == 0 {
		return readings
	}
	values := make(map[string]float64, len(readings))
	ts := readings[0].Time
	for _, r := range readings {
		values[r.Series] = r.Value
		ts = math.Max(ts, r.Time)
	}
	derived, err := d.Eval(values)
	if err != nil {
		_ = errdef.Soft(d.logf, err)
	}
	for _, p := range d.programs {
		if v, ok := derived[p.rule.Name]; ok {
			readings = append(readings, collect.Reading{Series: p.rule.Name, Value: v, Time: ts, Kind: p.rule.Kind})
		}
	}
	return readings
}

func (d *Deriver) run(p program) (v float64, err error) {
	d.bind()
	timer := time.AfterFunc(d.timeout, func() { d.vm.Interrupt("timeout") })
	defer func() {
		timer.Stop()
		d.vm.ClearInterrupt()
	}()

	res, err := d.vm.RunProgram(p.prog)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", p.rule.Name, err)
	}
	v = res.ToFloat()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s: result %v is not a finite number", p.rule.Name, res)
	}
	return v, nil
}

// bind exposes each known series both as a sanitized identifier and through
// the series object for names that do not survive sanitizing.
func (d *Deriver) bind() {
	names := make([]string, 0, len(d.latest))
	for k := range d.latest {
		names = append(names, k)
	}
	sort.Strings(names)
	series := make(map[string]any, len(names))
	for _, name := range names {
		v := d.latest[name]
		series[name] = v
		_ = d.vm.Set(Identifier(name), v)
	}
	_ = d.vm.Set("series", series)
}

func (d *Deriver) bindConsole() {
	logFn := func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, arg.String())
		}
		d.logf("script: %s", strings.Join(parts, " "))
		return goja.Undefined()
	}
	console := map[string]func(goja.FunctionCall) goja.Value{
		"log":   logFn,
		"warn":  logFn,
		"error": logFn,
	}
	_ = d.vm.Set("console", console)
}

// Identifier maps a series name to a JavaScript identifier: "mem.used"
// becomes mem_used and "5xx" becomes _5xx.
func Identifier(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func normalizeScript(body string) string {
	script := strings.TrimSpace(body)
	if strings.HasPrefix(script, "{%") && strings.HasSuffix(script, "%}") {
		script = strings.TrimSpace(script[2 : len(script)-2])
	}
	return strings.TrimSuffix(script, ";")
}
