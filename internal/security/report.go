package security

// Report summarizes how an engine is configured to sign and verify licenses.
type Report struct {
	SigningAlgorithm       string
	Asymmetric             bool
	RevocationEnabled      bool
	RevocationFailOpen     bool
	PlanRegistryConfigured bool
	AuditEnabled           bool
	AuditLossy             bool
	MetricsEnabled         bool
	LatencyHistograms      bool
	ExpiryToleranceMillis  int64
}

type ReportInput struct {
	SigningAlgorithm        string
	RevocationStore         bool
	RevocationFailOpen      bool
	PlanRegistry            bool
	AuditEnabled            bool
	AuditDropIfFull         bool
	MetricsEnabled          bool
	EnableLatencyHistograms bool
	ExpiryToleranceMillis   int64
}

func BuildReport(input ReportInput) Report {
	return Report{
		SigningAlgorithm:       input.SigningAlgorithm,
		Asymmetric:             input.SigningAlgorithm == "RS256",
		RevocationEnabled:      input.RevocationStore,
		RevocationFailOpen:     input.RevocationStore && input.RevocationFailOpen,
		PlanRegistryConfigured: input.PlanRegistry,
		AuditEnabled:           input.AuditEnabled,
		AuditLossy:             input.AuditEnabled && input.AuditDropIfFull,
		MetricsEnabled:         input.MetricsEnabled,
		LatencyHistograms:      input.MetricsEnabled && input.EnableLatencyHistograms,
		ExpiryToleranceMillis:  input.ExpiryToleranceMillis,
	}
}
