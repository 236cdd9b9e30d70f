// Package audit relays license events to a caller-supplied sink off the hot path.
//
// # Components
//
//   - [Sink]: event consumer (channel, JSON lines, func adapter, no-op).
//   - [Dispatcher]: buffered async relay that either drops or blocks when full.
//   - [Event]: one issue/verify/revoke outcome with license id, plan and reason.
//
// The Engine decides which events to emit; this package only buffers and delivers.
// It must not import goLicense or any sibling package.
package audit
