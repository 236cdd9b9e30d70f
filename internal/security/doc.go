// Package security derives a static security posture report from engine
// settings. It has no dependencies on the engine itself so the report can be
// unit tested from plain inputs.
package security
