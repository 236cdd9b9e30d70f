package goLicense

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goLicense/jwt"
)

// LintSeverity ranks a configuration warning.
type LintSeverity int

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one finding from [Config.Lint]. Code is stable and safe to
// match on; Message is for humans.
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the ordered list of findings.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, len(r))
	for i, w := range r {
		out[i] = w.Code
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins the warnings at or above min into one error, or returns nil.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	parts := make([]string, len(hits))
	for i, w := range hits {
		parts[i] = fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message)
	}
	return errors.New("config lint: " + strings.Join(parts, "; "))
}

// Lint reports settings that are valid but risky. It never fails; run
// Validate for hard errors.
func (c Config) Lint() LintResult {
	var ws LintResult
	add := func(code string, sev LintSeverity, msg string) {
		ws = append(ws, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if m, err := jwt.ParseMethod(string(c.Algorithm)); err == nil && m == jwt.MethodHS256 {
		add("hs256_shared_secret", LintWarn, "HS256 lets every verifier mint licenses; prefer RS256")
	}
	if c.Revocation.FailOpen {
		add("revocation_fail_open", LintHigh, "revoked licenses are accepted while the revocation store is unreachable")
	}
	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "license operations are not audited")
	} else if c.Audit.DropIfFull {
		add("audit_lossy", LintInfo, "audit events are dropped under backpressure")
	}
	if !c.Metrics.Enabled {
		add("metrics_disabled", LintInfo, "engine counters are not recorded")
	}
	return ws
}
