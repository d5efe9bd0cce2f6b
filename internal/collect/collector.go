package collect

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/unkn0wn-root/sysgraph/internal/errdef"
)

// Transform rewrites one tick's readings, e.g. to append derived series.
type Transform func(readings []Reading) []Reading

type Collector struct {
	sources   []Source
	interval  time.Duration
	logf      func(string, ...any)
	tracer    trace.Tracer
	now       func() time.Time
	transform Transform
}

type Option func(*Collector)

func WithInterval(d time.Duration) Option {
	return func(c *Collector) {
		if d > 0 {
			c.interval = d
		}
	}
}

func WithLogf(fn func(string, ...any)) Option {
	return func(c *Collector) {
		if fn != nil {
			c.logf = fn
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Collector) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

func WithTransform(fn Transform) Option {
	return func(c *Collector) { c.transform = fn }
}

func NewCollector(sources []Source, opts ...Option) *Collector {
	c := &Collector{
		sources:  sources,
		interval: time.Second,
		logf:     log.Printf,
		tracer:   noop.NewTracerProvider().Tracer("collect"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) Interval() time.Duration { return c.interval }

// Tick polls every source once. A failing source is logged and skipped.
func (c *Collector) Tick(ctx context.Context) []Reading {
	ctx, span := c.tracer.Start(ctx, "collect.tick")
	defer span.End()

	now := c.now()
	var out []Reading
	failed := 0
	for _, src := range c.sources {
		readings, err := src.Collect(ctx, now)
		if err != nil {
			failed++
			span.RecordError(err, trace.WithAttributes(attribute.String("source", src.Name())))
			_ = errdef.Soft(c.logf, errdef.Wrap(errdef.CodeSource, err, "source %s", src.Name()))
			continue
		}
		out = append(out, readings...)
	}
	if c.transform != nil && len(out) > 0 {
		out = c.transform(out)
	}
	span.SetAttributes(
		attribute.Int("collect.sources", len(c.sources)),
		attribute.Int("collect.readings", len(out)),
		attribute.Int("collect.failed", failed),
	)
	if failed > 0 && failed == len(c.sources) {
		span.SetStatus(codes.Error, "all sources failed")
	}
	return out
}

// Run ticks immediately and then every interval, sending non-empty batches
// to out until ctx is done.
func (c *Collector) Run(ctx context.Context, out chan<- []Reading) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		if batch := c.Tick(ctx); len(batch) > 0 {
			select {
			case out <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
