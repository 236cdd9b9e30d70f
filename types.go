package goLicense

import (
	"fmt"
	"math"
	"time"

	"github.com/MrEthical07/goLicense/jwt"
)

const (
	claimLicenseID      = "jti"
	claimPlanID         = "planId"
	claimPlanName       = "planName"
	claimEmail          = "email"
	claimExternalUserID = "externalUserId"
	claimImage          = "image"
	claimLimits         = "limits"
	claimPermissions    = "permissions"
)

var reservedClaims = map[string]struct{}{
	claimLicenseID:      {},
	claimPlanID:         {},
	claimPlanName:       {},
	claimEmail:          {},
	claimExternalUserID: {},
	claimImage:          {},
	claimLimits:         {},
	claimPermissions:    {},
	"iat":               {},
	"exp":               {},
}

// License is the claim schema carried by a license token.
//
// Every scalar field is always encoded, so PlanID 0 or an empty Email are
// real values rather than "missing". Image, Limits and Permissions are omitted
// when empty. Extra carries application-defined claims and may not reuse any
// of the names above or the registered iat/exp claims.
type License struct {
	ID             string
	PlanID         int
	PlanName       string
	Email          string
	ExternalUserID string
	Image          string
	Limits         map[string]int64
	Permissions    []string
	Extra          map[string]any
}

// Identity is the licensee half of a license; IssueForPlan fills in the plan half.
type Identity struct {
	Email          string
	ExternalUserID string
	Extra          map[string]any
}

// ParsedLicense is a verified license plus its issue and expiry instants.
type ParsedLicense struct {
	License
	Algorithm string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// IsValid reports whether the license is unexpired now. It is recomputed on
// every call and says nothing about revocation.
func (p *ParsedLicense) IsValid() bool {
	return p.IsValidAt(time.Now())
}

// IsValidAt reports whether the license is unexpired at t.
func (p *ParsedLicense) IsValidAt(t time.Time) bool {
	if p == nil {
		return false
	}
	return p.token().IsValidAt(t)
}

// HasPermission reports whether name is among the license permissions.
func (p *ParsedLicense) HasPermission(name string) bool {
	if p == nil {
		return false
	}
	for _, perm := range p.Permissions {
		if perm == name {
			return true
		}
	}
	return false
}

// Limit returns a numeric plan limit and whether it is present.
func (p *ParsedLicense) Limit(name string) (int64, bool) {
	if p == nil {
		return 0, false
	}
	v, ok := p.Limits[name]
	return v, ok
}

func (p *ParsedLicense) token() *jwt.Parsed {
	return &jwt.Parsed{Algorithm: p.Algorithm, IssuedAt: p.IssuedAt, ExpiresAt: p.ExpiresAt}
}

// maxExactLimit bounds limit values. JSON numbers decode as float64, which is
// exact only below 2^53.
const maxExactLimit = 1<<53 - 1

func (l License) validate() error {
	if l.PlanID > math.MaxInt32 || l.PlanID < math.MinInt32 {
		return fmt.Errorf("%w: %s %d out of int32 range", ErrInvalidLicense, claimPlanID, l.PlanID)
	}
	for k := range l.Extra {
		if _, reserved := reservedClaims[k]; reserved {
			return fmt.Errorf("%w: extra claim %q is reserved", ErrInvalidLicense, k)
		}
	}
	for k, v := range l.Limits {
		if v < 0 {
			return fmt.Errorf("%w: limit %q must be >= 0", ErrInvalidLicense, k)
		}
		if v > maxExactLimit {
			return fmt.Errorf("%w: limit %q exceeds %d", ErrInvalidLicense, k, int64(maxExactLimit))
		}
	}
	return nil
}

func (l License) claims() map[string]any {
	out := make(map[string]any, len(l.Extra)+len(reservedClaims))
	for k, v := range l.Extra {
		out[k] = v
	}

	out[claimLicenseID] = l.ID
	out[claimPlanID] = l.PlanID
	out[claimPlanName] = l.PlanName
	out[claimEmail] = l.Email
	out[claimExternalUserID] = l.ExternalUserID
	if l.Image != "" {
		out[claimImage] = l.Image
	}
	if len(l.Limits) > 0 {
		limits := make(map[string]int64, len(l.Limits))
		for k, v := range l.Limits {
			limits[k] = v
		}
		out[claimLimits] = limits
	}
	if len(l.Permissions) > 0 {
		out[claimPermissions] = append([]string(nil), l.Permissions...)
	}
	return out
}

func parsedLicenseFrom(p *jwt.Parsed) (*ParsedLicense, error) {
	lic, err := licenseFromClaims(p.Claims)
	if err != nil {
		return nil, err
	}
	return &ParsedLicense{
		License:   lic,
		Algorithm: p.Algorithm,
		IssuedAt:  p.IssuedAt,
		ExpiresAt: p.ExpiresAt,
	}, nil
}

func licenseFromClaims(claims map[string]any) (License, error) {
	var (
		lic License
		err error
	)

	if lic.ID, err = stringClaim(claims, claimLicenseID); err != nil {
		return License{}, err
	}
	if lic.PlanName, err = stringClaim(claims, claimPlanName); err != nil {
		return License{}, err
	}
	if lic.Email, err = stringClaim(claims, claimEmail); err != nil {
		return License{}, err
	}
	if lic.ExternalUserID, err = stringClaim(claims, claimExternalUserID); err != nil {
		return License{}, err
	}
	if lic.Image, err = stringClaim(claims, claimImage); err != nil {
		return License{}, err
	}

	if raw, ok := claims[claimPlanID]; ok && raw != nil {
		n, err := integerValue(raw)
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return License{}, fmt.Errorf("%w: %s must be an integer", ErrInvalidLicense, claimPlanID)
		}
		lic.PlanID = int(n)
	}

	if raw, ok := claims[claimLimits]; ok && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return License{}, fmt.Errorf("%w: %s must be an object", ErrInvalidLicense, claimLimits)
		}
		lic.Limits = make(map[string]int64, len(m))
		for k, v := range m {
			n, err := integerValue(v)
			if err != nil {
				return License{}, fmt.Errorf("%w: limit %q must be an integer", ErrInvalidLicense, k)
			}
			lic.Limits[k] = n
		}
	}

	if raw, ok := claims[claimPermissions]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return License{}, fmt.Errorf("%w: %s must be a list", ErrInvalidLicense, claimPermissions)
		}
		lic.Permissions = make([]string, 0, len(list))
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				return License{}, fmt.Errorf("%w: %s must contain strings", ErrInvalidLicense, claimPermissions)
			}
			lic.Permissions = append(lic.Permissions, s)
		}
	}

	for k, v := range claims {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		if lic.Extra == nil {
			lic.Extra = make(map[string]any)
		}
		lic.Extra[k] = v
	}
	return lic, nil
}

func stringClaim(claims map[string]any, name string) (string, error) {
	raw, ok := claims[name]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidLicense, name)
	}
	return s, nil
}

// integerValue accepts JSON numbers that hold an exact integer. Values at or
// past 2^53 are refused since neighbouring integers collapse onto them.
func integerValue(v any) (int64, error) {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > maxExactLimit {
		return 0, fmt.Errorf("not an integer: %v", v)
	}
	return int64(f), nil
}
