package jwt

import (
	"fmt"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

// ExpiryTolerance is the maximum distance, inclusive, at which ExpiryMatches
// still treats two instants as the same expiry. Tokens carry whole seconds.
const ExpiryTolerance = 2000 * time.Millisecond

// Parsed is a verified token. Claims holds the signed payload without the
// iat/exp registered claims, which are surfaced as IssuedAt and ExpiresAt.
type Parsed struct {
	Algorithm string
	// Claims uses the encoding/json shapes: numbers are float64 (an int 3
	// signed by Sign reads back as float64(3)), objects are map[string]any
	// and arrays are []any.
	Claims    map[string]any
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

func newParsed(alg string, claims gjwt.MapClaims) (*Parsed, error) {
	iat, err := claims.GetIssuedAt()
	if err != nil {
		return nil, verificationError(ReasonMalformed, fmt.Errorf("iat: %w", err))
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, verificationError(ReasonMalformed, fmt.Errorf("exp: %w", err))
	}

	p := &Parsed{
		Algorithm: alg,
		Claims:    make(map[string]any, len(claims)),
	}
	for k, v := range claims {
		if k == claimIssuedAt || k == claimExpiresAt {
			continue
		}
		p.Claims[k] = v
	}
	if iat != nil {
		t := iat.Time
		p.IssuedAt = &t
	}
	if exp != nil {
		t := exp.Time
		p.ExpiresAt = &t
	}
	return p, nil
}

// Claim returns a payload claim by name.
func (p *Parsed) Claim(name string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, ok := p.Claims[name]
	return v, ok
}

// IsValid reports whether the token is unexpired right now. It is evaluated on
// every call, so a Parsed value kept around goes invalid once exp passes.
func (p *Parsed) IsValid() bool {
	return p.IsValidAt(time.Now())
}

// IsValidAt reports whether the token is unexpired at t. A token without exp
// never expires; the expiry instant itself is still valid.
func (p *Parsed) IsValidAt(t time.Time) bool {
	if p == nil {
		return false
	}
	if p.ExpiresAt == nil {
		return true
	}
	return !t.After(*p.ExpiresAt)
}

// ExpiryMatches reports whether p expires within ExpiryTolerance of expected.
// Tokens without an expiry never match.
func ExpiryMatches(p *Parsed, expected time.Time) bool {
	if p == nil || p.ExpiresAt == nil {
		return false
	}
	return WithinTolerance(*p.ExpiresAt, expected)
}

// WithinTolerance reports whether |a-b| <= ExpiryTolerance.
func WithinTolerance(a, b time.Time) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= ExpiryTolerance
}
