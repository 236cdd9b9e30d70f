package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/MrEthical07/goLicense/keys"
	gjwt "github.com/golang-jwt/jwt/v5"
)

func licensePayload() map[string]any {
	return map[string]any{
		"planId":         3,
		"planName":       "Pro",
		"email":          "owner@example.com",
		"externalUserId": "cus_123",
		"permissions":    []string{"export", "sync"},
	}
}

func TestParseDecodesJSONShapes(t *testing.T) {
	kp, _ := testPairs(t)
	payload := map[string]any{
		"seats":  3,
		"limits": map[string]int64{"devices": 5},
		"tags":   []string{"a"},
	}

	token, err := Sign(payload, kp.private, Never(), MethodRS256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	p, err := Parse(token, kp.public, MethodRS256)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if v := p.Claims["seats"]; v != float64(3) {
		t.Fatalf("seats = %#v, want float64(3)", v)
	}
	limits, ok := p.Claims["limits"].(map[string]any)
	if !ok || limits["devices"] != float64(5) {
		t.Fatalf("limits = %#v", p.Claims["limits"])
	}
	if tags, ok := p.Claims["tags"].([]any); !ok || len(tags) != 1 || tags[0] != "a" {
		t.Fatalf("tags = %#v", p.Claims["tags"])
	}
}

func TestSignParseRoundTrip(t *testing.T) {
	kp, _ := testPairs(t)
	expiry := time.Now().Add(30 * 24 * time.Hour).Add(456 * time.Millisecond)

	token, err := Sign(licensePayload(), kp.private, At(expiry), MethodRS256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	p, err := Parse(token, kp.public, MethodRS256)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Algorithm != "RS256" {
		t.Fatalf("algorithm = %q", p.Algorithm)
	}
	if v, _ := p.Claim("planId"); v != float64(3) {
		t.Fatalf("planId = %#v", v)
	}
	for _, name := range []string{"planName", "email", "externalUserId"} {
		got, ok := p.Claim(name)
		if !ok || got != licensePayload()[name] {
			t.Fatalf("%s = %#v, want %#v", name, got, licensePayload()[name])
		}
	}
	perms, ok := p.Claims["permissions"].([]any)
	if !ok || len(perms) != 2 || perms[0] != "export" || perms[1] != "sync" {
		t.Fatalf("permissions = %#v", p.Claims["permissions"])
	}
	if _, ok := p.Claims["exp"]; ok {
		t.Fatal("exp should be surfaced as ExpiresAt, not as a claim")
	}
	if !p.IsValid() {
		t.Fatal("expected future-dated token to be valid")
	}
	if p.ExpiresAt == nil || !p.ExpiresAt.Equal(time.Unix(expiry.Unix(), 0)) {
		t.Fatalf("ExpiresAt = %v, want %v", p.ExpiresAt, expiry.Truncate(time.Second))
	}
	if p.IssuedAt == nil || time.Since(*p.IssuedAt) > time.Minute {
		t.Fatalf("IssuedAt = %v", p.IssuedAt)
	}
	if !IsValid(token, kp.public, MethodRS256) {
		t.Fatal("IsValid returned false for a valid token")
	}
	if got := Classify(token, kp.public, MethodRS256); got != StatusValid {
		t.Fatalf("Classify = %v", got)
	}
}

func TestPastExpiryYieldsExpiredButReadableToken(t *testing.T) {
	kp, _ := testPairs(t)
	expiry := time.Now().Add(-48 * time.Hour)

	token, err := Sign(licensePayload(), kp.private, At(expiry), MethodRS256)
	if err != nil {
		t.Fatalf("sign with past expiry: %v", err)
	}

	p, err := Parse(token, kp.public, MethodRS256)
	if err != nil {
		t.Fatalf("parse expired token: %v", err)
	}
	if p.IsValid() {
		t.Fatal("expired token reported valid")
	}
	if got, _ := p.Claim("email"); got != "owner@example.com" {
		t.Fatalf("email = %#v", got)
	}
	if p.ExpiresAt == nil || p.ExpiresAt.Unix() != expiry.Unix() {
		t.Fatalf("ExpiresAt = %v, want %v", p.ExpiresAt, expiry)
	}
	if IsValid(token, kp.public, MethodRS256) {
		t.Fatal("IsValid accepted an expired token")
	}
	if got := Classify(token, kp.public, MethodRS256); got != StatusExpired {
		t.Fatalf("Classify = %v", got)
	}
}

func TestNoExpiryIsPerpetual(t *testing.T) {
	kp, _ := testPairs(t)

	token, err := Sign(licensePayload(), kp.private, Never(), MethodRS256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	p, err := Parse(token, kp.public, MethodRS256)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.ExpiresAt != nil {
		t.Fatalf("ExpiresAt = %v, want nil", p.ExpiresAt)
	}
	if !p.IsValidAt(time.Now().AddDate(100, 0, 0)) {
		t.Fatal("perpetual token expired")
	}
	if p.IssuedAt == nil {
		t.Fatal("IssuedAt missing")
	}
}

func TestRelativeExpiryCountsFromIssuedAt(t *testing.T) {
	kp, _ := testPairs(t)
	now := time.Unix(1_700_000_000, 900_000_000)

	cases := map[string]struct {
		exp  Expiry
		want int64
	}{
		"days":     {In("30d"), 30 * 86400},
		"months":   {In("2 months"), 2 * 2629800},
		"duration": {After(90 * time.Minute), 5400},
		"negative": {After(-1500 * time.Millisecond), -2},
	}
	for name, tc := range cases {
		token, err := signAt(now, nil, kp.private, tc.exp, MethodRS256)
		if err != nil {
			t.Fatalf("%s: sign: %v", name, err)
		}
		p, err := Parse(token, kp.public, MethodRS256)
		if err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if p.IssuedAt.Unix() != now.Unix() {
			t.Fatalf("%s: iat = %d", name, p.IssuedAt.Unix())
		}
		if got := p.ExpiresAt.Unix() - p.IssuedAt.Unix(); got != tc.want {
			t.Fatalf("%s: exp-iat = %d, want %d", name, got, tc.want)
		}
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	kp, _ := testPairs(t)
	token, err := Sign(licensePayload(), kp.private, At(time.Now().Add(time.Hour)), MethodRS256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parts := strings.Split(token, ".")
	swapped := []byte(parts[1])
	if swapped[5] == 'A' {
		swapped[5] = 'B'
	} else {
		swapped[5] = 'A'
	}

	tampered := map[string]string{
		"appended": token + "x",
		"payload":  parts[0] + "." + string(swapped) + "." + parts[2],
		"dropped":  parts[0] + "." + parts[1] + ".",
	}
	for name, tok := range tampered {
		if _, err := Parse(tok, kp.public, MethodRS256); !errors.Is(err, ErrVerification) {
			t.Fatalf("%s: Parse error = %v, want ErrVerification", name, err)
		}
		if IsValid(tok, kp.public, MethodRS256) {
			t.Fatalf("%s: IsValid accepted tampered token", name)
		}
	}
}

func TestParseClassifiesFailures(t *testing.T) {
	kp, other := testPairs(t)
	good, err := Sign(licensePayload(), kp.private, Never(), MethodRS256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	hs, err := Sign(licensePayload(), "shared-secret", Never(), MethodHS256)
	if err != nil {
		t.Fatalf("sign hs256: %v", err)
	}
	none, err := gjwt.NewWithClaims(gjwt.SigningMethodNone, gjwt.MapClaims{"planId": 1}).SignedString(gjwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	cases := []struct {
		name   string
		token  string
		key    string
		reason Reason
		status Status
	}{
		{"empty", "  ", kp.public, ReasonEmpty, StatusEmpty},
		{"garbage", "not-a-token", kp.public, ReasonMalformed, StatusMalformed},
		{"three garbage segments", "not.a.jwt", kp.public, ReasonMalformed, StatusMalformed},
		{"wrong key", good, other.public, ReasonSignature, StatusBadSignature},
		{"hs256 token", hs, kp.public, ReasonAlgorithm, StatusAlgorithmMismatch},
		{"unsigned token", none, kp.public, ReasonAlgorithm, StatusAlgorithmMismatch},
		{"bad key", good, "not a pem", ReasonKey, StatusBadKey},
	}
	for _, tc := range cases {
		_, err := Parse(tc.token, tc.key, MethodRS256)
		var ve *VerificationError
		if !errors.As(err, &ve) {
			t.Fatalf("%s: error %v is not a VerificationError", tc.name, err)
		}
		if ve.Reason != tc.reason {
			t.Fatalf("%s: reason = %s, want %s", tc.name, ve.Reason, tc.reason)
		}
		if !errors.Is(err, ErrVerification) {
			t.Fatalf("%s: error does not match ErrVerification", tc.name)
		}
		if got := Classify(tc.token, tc.key, MethodRS256); got != tc.status {
			t.Fatalf("%s: Classify = %v, want %v", tc.name, got, tc.status)
		}
		if IsValid(tc.token, tc.key, MethodRS256) {
			t.Fatalf("%s: IsValid returned true", tc.name)
		}
	}

	_, err = Parse(good, "not a pem", MethodRS256)
	if !errors.Is(err, keys.ErrKeyFormat) {
		t.Fatalf("bad key error %v does not match keys.ErrKeyFormat", err)
	}
}

func TestKeysAreNormalizedBeforeUse(t *testing.T) {
	kp, _ := testPairs(t)
	escapedPrivate := strings.ReplaceAll(kp.private, "\n", `\n`)
	spacedPublic := strings.ReplaceAll(kp.public, "\n", " ")

	token, err := Sign(licensePayload(), escapedPrivate, After(time.Hour), MethodRS256)
	if err != nil {
		t.Fatalf("sign with escaped key: %v", err)
	}
	if _, err := Parse(token, spacedPublic, MethodRS256); err != nil {
		t.Fatalf("parse with space-joined key: %v", err)
	}
	if _, err := Parse(token, kp.private, MethodRS256); err != nil {
		t.Fatalf("parse with private key: %v", err)
	}
}

func TestSignFailures(t *testing.T) {
	kp, _ := testPairs(t)

	_, err := Sign(licensePayload(), "not a pem", Never(), MethodRS256)
	if !errors.Is(err, keys.ErrKeyFormat) || !errors.Is(err, ErrSigning) {
		t.Fatalf("garbage key error = %v", err)
	}
	if _, err := Sign(licensePayload(), kp.public, Never(), MethodRS256); !errors.Is(err, ErrSigning) {
		t.Fatalf("public key signing error = %v", err)
	}
	if _, err := Sign(licensePayload(), "", Never(), MethodHS256); !errors.Is(err, ErrSigning) {
		t.Fatalf("empty secret error = %v", err)
	}
	if _, err := Sign(licensePayload(), kp.private, In("soon"), MethodRS256); !errors.Is(err, ErrInvalidExpiry) {
		t.Fatalf("bad expression error = %v", err)
	}
	if _, err := Sign(map[string]any{"exp": 1}, kp.private, After(time.Hour), MethodRS256); !errors.Is(err, ErrSigning) {
		t.Fatalf("exp conflict error = %v", err)
	}
	if _, err := Sign(licensePayload(), kp.private, Never(), Method("ES256")); !errors.Is(err, ErrSigning) {
		t.Fatalf("unsupported method error = %v", err)
	}
	if _, err := Sign(map[string]any{"bad": make(chan int)}, kp.private, Never(), MethodRS256); !errors.Is(err, ErrSigning) {
		t.Fatalf("unencodable payload error = %v", err)
	}
}

func TestHS256RoundTrip(t *testing.T) {
	token, err := Sign(licensePayload(), "s3cret", After(time.Hour), MethodHS256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	p, err := Parse(token, "s3cret", MethodHS256)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.IsValid() || p.Algorithm != "HS256" {
		t.Fatalf("unexpected parsed token: %+v", p)
	}
	if IsValid(token, "other", MethodHS256) {
		t.Fatal("wrong secret accepted")
	}
}

func TestParsedTokenValidityIsNotCached(t *testing.T) {
	exp := time.Now().Add(50 * time.Millisecond)
	p := &Parsed{ExpiresAt: &exp}
	if !p.IsValid() {
		t.Fatal("expected token to be valid before exp")
	}
	time.Sleep(100 * time.Millisecond)
	if p.IsValid() {
		t.Fatal("validity was not recomputed after exp")
	}
	if !p.IsValidAt(exp) || p.IsValidAt(exp.Add(time.Nanosecond)) {
		t.Fatal("expiry instant must be inclusive")
	}
	var nilParsed *Parsed
	if nilParsed.IsValid() {
		t.Fatal("nil parsed token reported valid")
	}
}

func TestExpiryMatchesTolerance(t *testing.T) {
	exp := time.Unix(1_800_000_000, 0)
	p := &Parsed{ExpiresAt: &exp}

	cases := []struct {
		offset time.Duration
		want   bool
	}{
		{0, true},
		{2000 * time.Millisecond, true},
		{-2000 * time.Millisecond, true},
		{2001 * time.Millisecond, false},
		{-2001 * time.Millisecond, false},
		{2000*time.Millisecond + time.Nanosecond, false},
		{time.Hour, false},
	}
	for _, tc := range cases {
		if got := ExpiryMatches(p, exp.Add(tc.offset)); got != tc.want {
			t.Fatalf("offset %v: got %v, want %v", tc.offset, got, tc.want)
		}
	}

	if ExpiryMatches(&Parsed{}, exp) {
		t.Fatal("token without expiry matched")
	}
	if ExpiryMatches(nil, exp) {
		t.Fatal("nil token matched")
	}
}

func TestExpiryMatchesSignedToken(t *testing.T) {
	kp, _ := testPairs(t)
	expected := time.Now().AddDate(0, 1, 0)

	token, err := Sign(licensePayload(), kp.private, At(expected), MethodRS256)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	p, err := Parse(token, kp.public, MethodRS256)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !ExpiryMatches(p, expected) {
		t.Fatalf("expiry %v does not match %v", p.ExpiresAt, expected)
	}
	if ExpiryMatches(p, expected.AddDate(0, 0, 1)) {
		t.Fatal("one day drift went undetected")
	}
}
