package goLicense

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/goLicense/internal/audit"
	"github.com/MrEthical07/goLicense/jwt"
	"github.com/MrEthical07/goLicense/plans"
	"github.com/MrEthical07/goLicense/revocation"
	"github.com/google/uuid"
)

// Engine issues and verifies license tokens.
//
// Engine holds no key material; every call receives its key. It is safe for
// concurrent use once built.
type Engine struct {
	config      Config
	method      jwt.Method
	revocations revocation.Store
	plans       plans.Registry
	audit       *audit.Dispatcher
	metrics     *Metrics
}

// Close drains pending audit events.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// Algorithm returns the signing method in use.
func (e *Engine) Algorithm() jwt.Method {
	if e == nil {
		return ""
	}
	return e.method
}

// AuditDropped returns the number of audit events dropped due to backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of the engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observe(id MetricID, start time.Time) {
	if e == nil || !e.metrics.LatencyEnabled() {
		return
	}
	e.metrics.Observe(id, time.Since(start))
}

// Issue signs lic with key. An empty lic.ID is replaced by a random UUID.
// Key format and signing failures are returned unchanged in kind: they match
// ErrKeyFormat or ErrSigning through errors.Is.
func (e *Engine) Issue(ctx context.Context, lic License, key string, exp jwt.Expiry) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricSignLatency, start)

	if lic.ID == "" {
		lic.ID = uuid.NewString()
	}
	if err := lic.validate(); err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventLicenseIssueFailed, false, &lic, err, nil)
		return "", err
	}

	token, err := jwt.Sign(lic.claims(), key, exp, e.method)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		if errors.Is(err, ErrKeyFormat) {
			e.metricInc(MetricKeyFormatRejected)
		}
		e.emitAudit(ctx, auditEventLicenseIssueFailed, false, &lic, err, nil)
		return "", err
	}

	e.metricInc(MetricIssueSuccess)
	e.emitAudit(ctx, auditEventLicenseIssued, true, &lic, nil, func() map[string]string {
		return map[string]string{"expiry": exp.String()}
	})
	return token, nil
}

// IssueForPlan looks planID up in the plan registry and issues a license for
// identity carrying the plan's name, image, limits and permissions.
func (e *Engine) IssueForPlan(ctx context.Context, planID int, identity Identity, key string, exp jwt.Expiry) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.plans == nil {
		return "", ErrPlanRegistryMissing
	}

	plan, err := e.plans.PlanByID(ctx, planID)
	if err != nil {
		e.metricInc(MetricIssueFailure)
		e.emitAudit(ctx, auditEventLicensePlanLookupFailed, false, &License{PlanID: planID}, err, nil)
		if errors.Is(err, plans.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("plan lookup: %w", err)
	}

	return e.Issue(ctx, License{
		PlanID:         plan.ID,
		PlanName:       plan.Name,
		Email:          identity.Email,
		ExternalUserID: identity.ExternalUserID,
		Image:          plan.Image,
		Limits:         plan.Limits,
		Permissions:    plan.Permissions,
		Extra:          identity.Extra,
	}, key, exp)
}

// Parse verifies the signature and decodes the license without rejecting it
// for being expired; check IsValid on the result. Verification failures match
// ErrVerification, claim shape problems match ErrInvalidLicense.
func (e *Engine) Parse(ctx context.Context, token string, key string) (*ParsedLicense, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricVerifyLatency, start)

	return e.parse(ctx, token, key)
}

func (e *Engine) parse(ctx context.Context, token string, key string) (*ParsedLicense, error) {
	p, err := jwt.Parse(token, key, e.method)
	if err != nil {
		e.metricInc(MetricParseFailure)
		if errors.Is(err, ErrKeyFormat) {
			e.metricInc(MetricKeyFormatRejected)
		}
		e.emitAudit(ctx, auditEventVerificationFailed, false, nil, err, nil)
		return nil, err
	}

	lic, err := parsedLicenseFrom(p)
	if err != nil {
		e.metricInc(MetricParseFailure)
		e.emitAudit(ctx, auditEventLicenseClaimsMalformed, false, nil, err, nil)
		return nil, err
	}

	e.metricInc(MetricParseSuccess)
	if !lic.IsValid() {
		e.metricInc(MetricParseExpired)
	}
	return lic, nil
}

// Check is the strict form of Parse. It returns the decoded license whenever the
// token is authentic, and a nil error only when it is also unexpired and not
// revoked. Otherwise the error matches ErrLicenseExpired, ErrLicenseRevoked,
// ErrRevocationUnavailable or ErrVerification.
func (e *Engine) Check(ctx context.Context, token string, key string) (*ParsedLicense, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricVerifyLatency, start)

	lic, err := e.parse(ctx, token, key)
	if err != nil {
		e.metricInc(MetricCheckRejected)
		return nil, err
	}

	if !lic.IsValid() {
		e.metricInc(MetricCheckRejected)
		e.emitAudit(ctx, auditEventLicenseExpired, false, &lic.License, ErrLicenseExpired, func() map[string]string {
			return map[string]string{"expires_at": lic.ExpiresAt.UTC().Format(time.RFC3339)}
		})
		return lic, ErrLicenseExpired
	}

	if e.revocations != nil && lic.ID != "" {
		revoked, err := e.revocations.IsRevoked(ctx, lic.ID)
		switch {
		case err != nil && !e.config.Revocation.FailOpen:
			e.metricInc(MetricCheckRejected)
			wrapped := fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
			e.emitAudit(ctx, auditEventRevocationCheckFailed, false, &lic.License, wrapped, nil)
			return lic, wrapped
		case err != nil:
			e.emitAudit(ctx, auditEventRevocationCheckFailed, true, &lic.License, err, func() map[string]string {
				return map[string]string{"fail_open": "true"}
			})
		case revoked:
			e.metricInc(MetricCheckRejected)
			e.metricInc(MetricRevocationHit)
			e.emitAudit(ctx, auditEventLicenseRevokedHit, false, &lic.License, ErrLicenseRevoked, nil)
			return lic, ErrLicenseRevoked
		}
	}

	e.metricInc(MetricCheckValid)
	return lic, nil
}

// IsValid reports whether token is authentic, unexpired and not revoked. It
// never returns an error; every failure reads as false.
func (e *Engine) IsValid(ctx context.Context, token string, key string) bool {
	if e == nil {
		return false
	}
	_, err := e.Check(ctx, token, key)
	return err == nil
}

// ExpiryMatches reports whether p expires within jwt.ExpiryTolerance of
// expected. Callers use it to detect drift between a license and an
// independently computed subscription end date. Licenses without expiry never match.
func (e *Engine) ExpiryMatches(ctx context.Context, p *ParsedLicense, expected time.Time) bool {
	ok := ExpiryMatches(p, expected)
	if ok {
		e.metricInc(MetricExpiryMatch)
		return true
	}

	e.metricInc(MetricExpiryDrift)
	var lic *License
	if p != nil {
		lic = &p.License
	}
	e.emitAudit(ctx, auditEventLicenseExpiryDrift, false, lic, nil, func() map[string]string {
		meta := map[string]string{"expected": expected.UTC().Format(time.RFC3339)}
		if p != nil && p.ExpiresAt != nil {
			meta["expires_at"] = p.ExpiresAt.UTC().Format(time.RFC3339)
			meta["drift_ms"] = strconv.FormatInt(p.ExpiresAt.Sub(expected).Milliseconds(), 10)
		}
		return meta
	})
	return false
}

// ExpiryMatches is the engine-free form of [Engine.ExpiryMatches].
func ExpiryMatches(p *ParsedLicense, expected time.Time) bool {
	if p == nil {
		return false
	}
	return jwt.ExpiryMatches(p.token(), expected)
}

// Revoke puts licenseID on the revocation list until until.
func (e *Engine) Revoke(ctx context.Context, licenseID string, until time.Time) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.revocations == nil {
		return ErrRevocationUnavailable
	}
	if err := e.revocations.Revoke(ctx, licenseID, until); err != nil {
		e.emitAudit(ctx, auditEventLicenseRevoked, false, &License{ID: licenseID}, err, nil)
		if errors.Is(err, revocation.ErrUnavailable) {
			return fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
		}
		return err
	}

	e.metricInc(MetricRevoked)
	e.emitAudit(ctx, auditEventLicenseRevoked, true, &License{ID: licenseID}, nil, func() map[string]string {
		return map[string]string{"until": until.UTC().Format(time.RFC3339)}
	})
	return nil
}

// IsRevoked reports whether licenseID is on the revocation list.
func (e *Engine) IsRevoked(ctx context.Context, licenseID string) (bool, error) {
	if e == nil {
		return false, ErrEngineNotReady
	}
	if e.revocations == nil {
		return false, ErrRevocationUnavailable
	}
	revoked, err := e.revocations.IsRevoked(ctx, licenseID)
	if err != nil && errors.Is(err, revocation.ErrUnavailable) {
		return false, fmt.Errorf("%w: %v", ErrRevocationUnavailable, err)
	}
	return revoked, err
}
