package goLicense

import (
	"testing"

	"github.com/MrEthical07/goLicense/jwt"
)

func TestLint_DefaultConfigOnlyInfo(t *testing.T) {
	ws := defaultConfig().Lint()
	if high := ws.BySeverity(LintWarn); len(high) != 0 {
		t.Fatalf("default config should only produce INFO findings, got %v", high.Codes())
	}
	if !containsCode(ws.Codes(), "audit_disabled") {
		t.Error("expected audit_disabled warning")
	}
}

func TestLint_HS256Warning(t *testing.T) {
	cfg := defaultConfig()
	cfg.Algorithm = jwt.MethodHS256
	if !containsCode(cfg.Lint().Codes(), "hs256_shared_secret") {
		t.Error("expected hs256_shared_secret warning")
	}
}

func TestLint_AuditLossy(t *testing.T) {
	cfg := defaultConfig()
	cfg.Audit.Enabled = true
	codes := cfg.Lint().Codes()
	if containsCode(codes, "audit_disabled") || !containsCode(codes, "audit_lossy") {
		t.Errorf("unexpected codes %v", codes)
	}
}

func TestLint_AsError(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Lint().AsError(LintHigh); err != nil {
		t.Errorf("default config should not fail AsError(LintHigh): %v", err)
	}

	cfg.Revocation.FailOpen = true
	err := cfg.Lint().AsError(LintHigh)
	if err == nil {
		t.Fatal("expected AsError(LintHigh) to fail for fail-open revocation")
	}
	for _, w := range cfg.Lint().BySeverity(LintHigh) {
		if w.Code != "revocation_fail_open" || w.Severity.String() != "HIGH" {
			t.Errorf("unexpected HIGH finding %+v", w)
		}
	}
}

func TestSecurityReportReflectsEngine(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Revocation.FailOpen = true
	e := buildTestEngine(t, New().WithConfig(cfg).WithMetricsEnabled(true))

	r := e.SecurityReport()
	if r.SigningAlgorithm != "RS256" || !r.Asymmetric {
		t.Fatalf("unexpected algorithm fields: %+v", r)
	}
	if r.RevocationEnabled || r.RevocationFailOpen {
		t.Fatalf("no store attached, got %+v", r)
	}
	if !r.MetricsEnabled || r.AuditEnabled || r.ExpiryToleranceMillis != 2000 {
		t.Fatalf("unexpected report: %+v", r)
	}

	var nilEngine *Engine
	if nilEngine.SecurityReport() != (SecurityReport{}) {
		t.Fatal("nil engine reports zero value")
	}
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
