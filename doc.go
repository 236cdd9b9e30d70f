// Package goLicense issues and validates signed license tokens that carry a
// subscription plan and identity claims, used to gate features in a client
// application.
//
// The package is designed for concurrent use: Engine methods are safe to call
// from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goLicense is the public surface. It exposes [Engine], [Builder], [Config] and
// the typed [License] claim schema. The signing and verification contract lives
// in the stateless jwt and keys sub-packages; this package layers plan lookup,
// revocation, audit and metrics on top of it.
//
// # What this package must NOT do
//
//   - Persist or cache key material. Keys are supplied on every call.
//   - Log. Observability goes through the injected [AuditSink] and [Metrics].
//   - Treat expiration as a parse failure. [Engine.Parse] returns expired
//     licenses with IsValid() == false so callers can still read their claims.
package goLicense
