package jwt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type expiryKind uint8

const (
	expiryNever expiryKind = iota
	expiryAt
	expiryIn
	expiryAfter
)

// Expiry describes when a signed token stops being valid. The zero value never expires.
type Expiry struct {
	kind  expiryKind
	at    time.Time
	expr  string
	after time.Duration
}

// Never produces a perpetual token with no exp claim.
func Never() Expiry { return Expiry{} }

// At expires the token at t, truncated to the second. t may already be in the
// past, which yields an already-expired token.
func At(t time.Time) Expiry { return Expiry{kind: expiryAt, at: t} }

// In expires the token after a duration expression such as "30d", "6 months"
// or "1y", counted from the issued-at second.
func In(expr string) Expiry { return Expiry{kind: expiryIn, expr: expr} }

// After expires the token d after the issued-at second.
func After(d time.Duration) Expiry { return Expiry{kind: expiryAfter, after: d} }

// IsNever reports whether the expiry leaves the token without an exp claim.
func (e Expiry) IsNever() bool { return e.kind == expiryNever }

func (e Expiry) String() string {
	switch e.kind {
	case expiryAt:
		return "at " + e.at.UTC().Format(time.RFC3339)
	case expiryIn:
		return "in " + e.expr
	case expiryAfter:
		return "after " + e.after.String()
	default:
		return "never"
	}
}

// resolve returns the exp claim for a token issued at iat (unix seconds).
func (e Expiry) resolve(iat int64) (int64, bool, error) {
	switch e.kind {
	case expiryAt:
		return e.at.Unix(), true, nil
	case expiryIn:
		d, err := ParseSpan(e.expr)
		if err != nil {
			return 0, false, err
		}
		return iat + floorSeconds(d), true, nil
	case expiryAfter:
		return iat + floorSeconds(e.after), true, nil
	default:
		return 0, false, nil
	}
}

func floorSeconds(d time.Duration) int64 {
	secs := int64(d / time.Second)
	if d%time.Second < 0 {
		secs--
	}
	return secs
}

var spanPattern = regexp.MustCompile(`(?i)^(-?\d*\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|months?|mo|years?|yrs?|y)?$`)

const (
	day   = 24 * time.Hour
	year  = time.Duration(365.25 * float64(day))
	month = year / 12
)

// ParseSpan parses a human duration expression. A bare number is milliseconds;
// a month is a twelfth of a 365.25-day year.
func ParseSpan(expr string) (time.Duration, error) {
	m := spanPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidExpiry, expr)
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidExpiry, expr, err)
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "years", "year", "yrs", "yr", "y":
		unit = year
	case "months", "month", "mo":
		unit = month
	case "weeks", "week", "w":
		unit = 7 * day
	case "days", "day", "d":
		unit = day
	case "hours", "hour", "hrs", "hr", "h":
		unit = time.Hour
	case "minutes", "minute", "mins", "min", "m":
		unit = time.Minute
	case "seconds", "second", "secs", "sec", "s":
		unit = time.Second
	default:
		unit = time.Millisecond
	}

	total := n * float64(unit)
	if math.Abs(total) >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidExpiry, expr)
	}
	return time.Duration(total), nil
}
