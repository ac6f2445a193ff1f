package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var (
	seq     atomic.Uint64
	spanIDs atomic.Uint64
)

// Span tracks one logical operation from Begin to End. A span whose tracer
// filtered it out is inert: all methods work and emit nothing.
type Span struct {
	tracer Tracer
	id     uint64
	parent uint64
	scope  Scope
	name   string
	start  time.Time
	extra  map[string]string
}

func (s *Span) live() bool {
	return s != nil && s.id != 0
}

func emit(t Tracer, ev Event) {
	ev.Time = time.Now()
	ev.Seq = seq.Add(1)
	t.Emit(&ev)
}

// Begin starts a span under parent (0 for a root) and emits its begin event.
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	s := &Span{start: time.Now()}
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return s
	}
	s.tracer, s.id, s.parent, s.scope, s.name = t, spanIDs.Add(1), parent, scope, name
	emit(t, Event{Kind: KindSpanBegin, Scope: scope, SpanID: s.id, ParentID: parent, Name: name})
	return s
}

// Start begins a span under the tracer and innermost span of ctx. Spans
// started from the returned context nest under the new one.
func Start(ctx context.Context, scope Scope, name string) (context.Context, *Span) {
	s := Begin(FromContext(ctx), scope, name, SpanFrom(ctx))
	if !s.live() {
		return ctx, s
	}
	return withSpan(ctx, s.id), s
}

// End emits the end event, carrying detail and the extras, and returns the
// span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil {
		return 0
	}
	d := time.Since(s.start)
	if s.live() {
		emit(s.tracer, Event{
			Kind:     KindSpanEnd,
			Scope:    s.scope,
			SpanID:   s.id,
			ParentID: s.parent,
			Name:     s.name,
			Detail:   detail,
			Extra:    s.extra,
		})
	}
	return d
}

// WithExtra records key=value for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if !s.live() {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point emits an instant event under the innermost span of ctx.
func Point(ctx context.Context, scope Scope, name, detail string) {
	t := FromContext(ctx)
	if !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return
	}
	emit(t, Event{Kind: KindPoint, Scope: scope, ParentID: SpanFrom(ctx), Name: name, Detail: detail})
}
