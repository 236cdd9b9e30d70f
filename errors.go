package goLicense

import (
	"errors"

	"github.com/MrEthical07/goLicense/jwt"
	"github.com/MrEthical07/goLicense/keys"
	"github.com/MrEthical07/goLicense/plans"
)

var (
	// ErrKeyFormat is returned when key material matches no recognized PEM header.
	ErrKeyFormat = keys.ErrKeyFormat
	// ErrSigning is returned when the signing primitive rejects the payload, key or algorithm.
	ErrSigning = jwt.ErrSigning
	// ErrVerification is returned when a token is malformed, mis-signed or uses the wrong algorithm.
	ErrVerification = jwt.ErrVerification
	// ErrInvalidExpiry is returned for expiry expressions that cannot be parsed.
	ErrInvalidExpiry = jwt.ErrInvalidExpiry
	// ErrInvalidLicense is returned when license claims do not fit the License schema.
	ErrInvalidLicense = errors.New("invalid license claims")
	// ErrLicenseExpired is returned by Check for authentic licenses past their expiry.
	ErrLicenseExpired = errors.New("license expired")
	// ErrLicenseRevoked is returned by Check for licenses on the revocation list.
	ErrLicenseRevoked = errors.New("license revoked")
	// ErrRevocationUnavailable is returned when no revocation store is configured or it cannot be reached.
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
	// ErrPlanNotFound is returned by IssueForPlan for unknown plan ids.
	ErrPlanNotFound = plans.ErrNotFound
	// ErrPlanRegistryMissing is returned by IssueForPlan when no registry was configured.
	ErrPlanRegistryMissing = errors.New("plan registry not configured")
	// ErrEngineNotReady is returned when methods are called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
