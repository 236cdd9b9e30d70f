package internaldefs

import (
	goLicense "github.com/MrEthical07/goLicense"
)

// CounterDef binds an engine counter to its exported name.
type CounterDef struct {
	ID   goLicense.MetricID
	Name string
	Help string
}

// HistogramDef binds an engine latency histogram to its exported name.
type HistogramDef struct {
	ID   goLicense.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: goLicense.MetricIssueSuccess, Name: "golicense_issue_success_total", Help: "Licenses signed."},
	{ID: goLicense.MetricIssueFailure, Name: "golicense_issue_failure_total", Help: "Failed signing attempts."},
	{ID: goLicense.MetricKeyFormatRejected, Name: "golicense_key_format_rejected_total", Help: "Keys rejected by PEM normalization."},
	{ID: goLicense.MetricParseSuccess, Name: "golicense_parse_success_total", Help: "Authentic licenses decoded."},
	{ID: goLicense.MetricParseFailure, Name: "golicense_parse_failure_total", Help: "Tokens rejected as malformed, mis-signed or mis-declared."},
	{ID: goLicense.MetricParseExpired, Name: "golicense_parse_expired_total", Help: "Authentic licenses found past their expiry."},
	{ID: goLicense.MetricCheckValid, Name: "golicense_check_valid_total", Help: "Check calls that accepted the license."},
	{ID: goLicense.MetricCheckRejected, Name: "golicense_check_rejected_total", Help: "Check calls that rejected the license."},
	{ID: goLicense.MetricRevocationHit, Name: "golicense_revocation_hit_total", Help: "Licenses rejected as revoked."},
	{ID: goLicense.MetricRevoked, Name: "golicense_revoked_total", Help: "Revoke operations."},
	{ID: goLicense.MetricExpiryMatch, Name: "golicense_expiry_match_total", Help: "Expiry comparisons within tolerance."},
	{ID: goLicense.MetricExpiryDrift, Name: "golicense_expiry_drift_total", Help: "Expiry comparisons outside tolerance."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: goLicense.MetricSignLatency, Name: "golicense_sign_latency_seconds", Help: "Issue latency histogram."},
	{ID: goLicense.MetricVerifyLatency, Name: "golicense_verify_latency_seconds", Help: "Parse and Check latency histogram."},
}

// AuditDroppedName is the counter of audit events lost to backpressure.
const AuditDroppedName = "golicense_audit_dropped_total"

// AuditDroppedHelp describes AuditDroppedName.
const AuditDroppedHelp = "Dropped audit events due to dispatcher backpressure."

// HistogramUpperBounds are the finite bucket bounds in seconds; the engine's
// eighth bucket is +Inf.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// HistogramBoundSuffix names each bucket, +Inf last, for exporters without native histograms.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed eight-bucket array, padding with zeros.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
