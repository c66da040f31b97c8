package telemetry

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.Tracer = (*OTelTracer)(nil)

// LogBufferSize determines the size of the async log channel.
const LogBufferSize = 4096

// InstrumentationName names the tracer of build runs.
const InstrumentationName = "forge"

type taskLog struct {
	spanID string
	data   []byte
	// flushed is closed by the forwarder once every earlier message was delivered.
	flushed chan struct{}
}

// OTelTracer implements ports.Tracer using OpenTelemetry.
// Task output is batched per span and forwarded to the renderer off the build path.
type OTelTracer struct {
	tracer trace.Tracer

	mu       sync.RWMutex
	renderer ports.Renderer
	logChan  chan taskLog
	closed   bool
	done     chan struct{}
}

// NewProvider returns a tracer provider whose spans are reported to renderer.
func NewProvider(renderer ports.Renderer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewBridge(renderer)),
	)
}

// NewOTelTracer creates a tracer drawing spans from tp.
func NewOTelTracer(tp trace.TracerProvider) *OTelTracer {
	t := &OTelTracer{
		tracer:  tp.Tracer(InstrumentationName),
		logChan: make(chan taskLog, LogBufferSize),
		done:    make(chan struct{}),
	}
	go t.runLoop()
	return t
}

// WithRenderer sets the renderer receiving plans and task output.
func (t *OTelTracer) WithRenderer(r ports.Renderer) *OTelTracer {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.renderer = r
	return t
}

func (t *OTelTracer) currentRenderer() ports.Renderer {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.renderer
}

func (t *OTelTracer) runLoop() {
	defer close(t.done)
	for msg := range t.logChan {
		if msg.flushed != nil {
			close(msg.flushed)
			continue
		}
		if r := t.currentRenderer(); r != nil {
			r.OnTaskLog(msg.spanID, msg.data)
		}
	}
}

// Shutdown stops the log forwarder after delivering what is buffered.
func (t *OTelTracer) Shutdown(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.logChan)
	}
	t.mu.Unlock()

	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue hands a log chunk to the forwarder, dropping it when the buffer is full.
func (t *OTelTracer) enqueue(msg taskLog) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.logChan <- msg:
	default:
	}
}

// barrier returns a channel closed once the output queued so far reached the renderer.
// It returns nil when the forwarder is closed or the buffer is full.
func (t *OTelTracer) barrier() <-chan struct{} {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return nil
	}
	flushed := make(chan struct{})
	select {
	case t.logChan <- taskLog{flushed: flushed}:
		return flushed
	default:
		return nil
	}
}

// Start creates a new span.
func (t *OTelTracer) Start(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
	cfg := &ports.SpanConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	attrs := make([]attribute.KeyValue, 0, len(cfg.Attributes))
	for k, v := range cfg.Attributes {
		attrs = append(attrs, toAttribute(k, v))
	}

	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	var batcher *BatchProcessor
	if t.currentRenderer() != nil {
		spanID := span.SpanContext().SpanID().String()
		batcher = NewBatchProcessor(0, 0, func(data []byte) {
			t.enqueue(taskLog{spanID: spanID, data: data})
		})
	}

	return ctx, &OTelSpan{span: span, batcher: batcher, tracer: t}
}

// EmitPlan records the plan on the current span and hands it to the renderer.
func (t *OTelTracer) EmitPlan(ctx context.Context, taskNames []string, deps map[string][]string, targets []string) {
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("plan_emitted", trace.WithAttributes(
			attribute.StringSlice("tasks", taskNames),
			attribute.StringSlice("targets", targets),
		))
	}

	if r := t.currentRenderer(); r != nil {
		r.OnPlanEmit(taskNames, deps, targets)
	}
}

// OTelSpan implements ports.Span using OpenTelemetry.
type OTelSpan struct {
	span    trace.Span
	batcher *BatchProcessor
	tracer  *OTelTracer
}

// End flushes buffered output and completes the span.
// The renderer receives all output of the span before its completion.
func (s *OTelSpan) End() {
	if s.batcher != nil {
		_ = s.batcher.Close()
		if flushed := s.tracer.barrier(); flushed != nil {
			<-flushed
		}
	}
	s.span.End()
}

// RecordError records an error for the span and marks it failed.
func (s *OTelSpan) RecordError(err error) {
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

// SetAttribute adds a key-value pair to the span.
func (s *OTelSpan) SetAttribute(key string, value any) {
	s.span.SetAttributes(toAttribute(key, value))
}

// Write forwards tool output to the renderer, or records it as a span event when none is set.
func (s *OTelSpan) Write(p []byte) (int, error) {
	if s.batcher != nil {
		return s.batcher.Write(p)
	}
	s.span.AddEvent("log", trace.WithAttributes(attribute.String("message", string(p))))
	return len(p), nil
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
