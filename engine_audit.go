package goLicense

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goLicense/jwt"
	"github.com/MrEthical07/goLicense/revocation"
)

const (
	auditEventLicenseIssued           = "license_issued"
	auditEventLicenseIssueFailed      = "license_issue_failed"
	auditEventVerificationFailed      = "license_verification_failed"
	auditEventLicenseExpired          = "license_expired"
	auditEventLicenseRevokedHit       = "license_revoked_rejected"
	auditEventLicenseRevoked          = "license_revoked"
	auditEventRevocationCheckFailed   = "license_revocation_check_failed"
	auditEventLicenseExpiryDrift      = "license_expiry_drift"
	auditEventLicenseClaimsMalformed  = "license_claims_malformed"
	auditEventLicensePlanLookupFailed = "license_plan_lookup_failed"
)

// AuditErrorCode is the stable error vocabulary used in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrKeyFormat      AuditErrorCode = "key_format"
	auditErrSigning        AuditErrorCode = "signing_failed"
	auditErrInvalidExpiry  AuditErrorCode = "invalid_expiry"
	auditErrEmpty          AuditErrorCode = "empty_token"
	auditErrMalformed      AuditErrorCode = "malformed_token"
	auditErrSignature      AuditErrorCode = "bad_signature"
	auditErrAlgorithm      AuditErrorCode = "algorithm_mismatch"
	auditErrBadKey         AuditErrorCode = "bad_key"
	auditErrExpired        AuditErrorCode = "expired"
	auditErrRevoked        AuditErrorCode = "revoked"
	auditErrInvalidLicense AuditErrorCode = "invalid_license"
	auditErrPlanNotFound   AuditErrorCode = "plan_not_found"
	auditErrUnavailable    AuditErrorCode = "backend_unavailable"
	auditErrInternal       AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	lic *License,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		TenantID:  tenantIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Algorithm: string(e.method),
		Success:   success,
		Metadata:  metadata,
	}
	if lic != nil {
		event.LicenseID = lic.ID
		planID := lic.PlanID
		event.PlanID = &planID
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	var ve *jwt.VerificationError
	if errors.As(err, &ve) {
		switch ve.Reason {
		case jwt.ReasonEmpty:
			return auditErrEmpty
		case jwt.ReasonSignature:
			return auditErrSignature
		case jwt.ReasonAlgorithm:
			return auditErrAlgorithm
		case jwt.ReasonKey:
			return auditErrBadKey
		default:
			return auditErrMalformed
		}
	}

	switch {
	case errors.Is(err, ErrKeyFormat):
		return auditErrKeyFormat
	case errors.Is(err, ErrInvalidExpiry):
		return auditErrInvalidExpiry
	case errors.Is(err, ErrSigning):
		return auditErrSigning
	case errors.Is(err, ErrLicenseExpired):
		return auditErrExpired
	case errors.Is(err, ErrLicenseRevoked):
		return auditErrRevoked
	case errors.Is(err, ErrInvalidLicense):
		return auditErrInvalidLicense
	case errors.Is(err, ErrPlanNotFound):
		return auditErrPlanNotFound
	case errors.Is(err, ErrRevocationUnavailable),
		errors.Is(err, revocation.ErrUnavailable),
		errors.Is(err, ErrPlanRegistryMissing):
		return auditErrUnavailable
	default:
		return auditErrInternal
	}
}
