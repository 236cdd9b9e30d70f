package goLicense

import (
	"io"

	"github.com/MrEthical07/goLicense/internal/audit"
)

// AuditEvent is one license operation outcome delivered to an [AuditSink].
type AuditEvent = audit.Event

// AuditSink receives audit events from the Engine's dispatcher goroutine.
type AuditSink = audit.Sink

// AuditSinkFunc adapts a plain function to [AuditSink].
type AuditSinkFunc = audit.SinkFunc

// NoOpSink discards every event.
type NoOpSink = audit.NoOpSink

// NewChannelSink returns a sink that buffers events in a channel of the given size.
func NewChannelSink(buffer int) *audit.ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink that writes one JSON object per line to w.
func NewJSONWriterSink(w io.Writer) *audit.JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}
