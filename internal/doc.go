// Package internal holds goLicense helpers that are not part of the public API.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - security: static posture report built from engine settings
//
// # What this package must NOT do
//
//   - Export types that appear in the public goLicense API except through aliases.
//   - Be imported by any package outside the goLicense module.
package internal
