// Package trace is the structured log of a uitest run.
//
// Every command opens a driver span, every stage of a run a pass span, and
// every test file a file span. Events go to a Tracer chosen on the command
// line:
//
//	uitest check --trace=- --trace-level=detail tests/ui
//
// StreamTracer writes events as they happen, RingTracer keeps the last events
// in memory so they can be dumped when a run fails, and MultiTracer does both.
// With tracing off the Nop tracer makes every call free.
//
// Tracers travel in the context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopePass, "parse")
//	defer span.End("")
package trace
