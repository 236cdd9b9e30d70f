package goLicense

import (
	"github.com/MrEthical07/goLicense/internal/security"
	"github.com/MrEthical07/goLicense/jwt"
)

// SecurityReport summarizes the engine's effective security posture.
type SecurityReport = security.Report

// SecurityReport returns the posture derived from the built configuration and
// attached collaborators.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}
	return security.BuildReport(security.ReportInput{
		SigningAlgorithm:        string(e.method),
		RevocationStore:         e.revocations != nil,
		RevocationFailOpen:      e.config.Revocation.FailOpen,
		PlanRegistry:            e.plans != nil,
		AuditEnabled:            e.audit != nil,
		AuditDropIfFull:         e.config.Audit.DropIfFull,
		MetricsEnabled:          e.config.Metrics.Enabled,
		EnableLatencyHistograms: e.config.Metrics.EnableLatencyHistograms,
		ExpiryToleranceMillis:   jwt.ExpiryTolerance.Milliseconds(),
	})
}
