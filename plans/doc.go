// Package plans resolves subscription plans by numeric id so license claims can
// carry plan name, limits and permissions.
//
// Plans are read from YAML once and are immutable afterwards; the registry is
// safe for concurrent lookups.
package plans
