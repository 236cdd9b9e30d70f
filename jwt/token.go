package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

const (
	claimIssuedAt  = "iat"
	claimExpiresAt = "exp"
)

// Sign copies payload into a new claim set, stamps iat with the current second,
// adds exp according to exp, and signs with method. RS256 keys are normalized
// first. Failures wrap ErrSigning, or keys.ErrKeyFormat for unrecognized PEM input.
func Sign(payload map[string]any, key string, exp Expiry, method Method) (string, error) {
	return signAt(time.Now(), payload, key, exp, method)
}

func signAt(now time.Time, payload map[string]any, key string, exp Expiry, method Method) (string, error) {
	sm, err := method.signingMethod()
	if err != nil {
		return "", signingError(err)
	}

	claims := make(gjwt.MapClaims, len(payload)+2)
	for k, v := range payload {
		claims[k] = v
	}

	iat := now.Unix()
	claims[claimIssuedAt] = iat

	expAt, hasExp, err := exp.resolve(iat)
	if err != nil {
		return "", signingError(err)
	}
	if hasExp {
		if _, ok := payload[claimExpiresAt]; ok {
			return "", signingError(errors.New("payload already has an exp claim"))
		}
		claims[claimExpiresAt] = expAt
	}

	signKey, err := method.signKey(key)
	if err != nil {
		return "", signingError(err)
	}

	token, err := gjwt.NewWithClaims(sm, claims).SignedString(signKey)
	if err != nil {
		return "", signingError(err)
	}
	return token, nil
}

// Parse verifies structure, algorithm and signature but never rejects a token
// for being expired; expiration is reported by the returned Parsed value.
// Every failure is a *VerificationError.
func Parse(token string, key string, method Method) (*Parsed, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, verificationError(ReasonEmpty, nil)
	}

	sm, err := method.signingMethod()
	if err != nil {
		return nil, verificationError(ReasonAlgorithm, err)
	}
	verifyKey, err := method.verifyKey(key)
	if err != nil {
		return nil, verificationError(ReasonKey, err)
	}

	parser := gjwt.NewParser(gjwt.WithoutClaimsValidation())
	claims := gjwt.MapClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *gjwt.Token) (interface{}, error) {
		if t.Method.Alg() != sm.Alg() {
			return nil, fmt.Errorf("%w: %s", errAlgorithmMismatch, t.Method.Alg())
		}
		return verifyKey, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}
	if !parsed.Valid {
		return nil, verificationError(ReasonSignature, gjwt.ErrTokenSignatureInvalid)
	}

	return newParsed(parsed.Method.Alg(), claims)
}

func classifyParseError(err error) *VerificationError {
	switch {
	case errors.Is(err, errAlgorithmMismatch):
		return verificationError(ReasonAlgorithm, err)
	case errors.Is(err, gjwt.ErrTokenMalformed):
		return verificationError(ReasonMalformed, err)
	case errors.Is(err, gjwt.ErrTokenUnverifiable):
		// Unknown or unregistered alg header.
		return verificationError(ReasonAlgorithm, err)
	case errors.Is(err, gjwt.ErrTokenSignatureInvalid):
		return verificationError(ReasonSignature, err)
	default:
		return verificationError(ReasonMalformed, err)
	}
}

// IsValid reports whether token is authentic and not expired. It never returns
// an error; any verification failure is reported as false.
func IsValid(token string, key string, method Method) bool {
	p, err := Parse(token, key, method)
	if err != nil {
		return false
	}
	return p.IsValid()
}

// Status is the outcome of verifying a token.
type Status int

const (
	StatusValid Status = iota
	StatusExpired
	StatusEmpty
	StatusMalformed
	StatusBadSignature
	StatusAlgorithmMismatch
	StatusBadKey
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusExpired:
		return "expired"
	case StatusEmpty:
		return "empty"
	case StatusMalformed:
		return "malformed"
	case StatusBadSignature:
		return "bad_signature"
	case StatusAlgorithmMismatch:
		return "algorithm_mismatch"
	case StatusBadKey:
		return "bad_key"
	default:
		return "unknown"
	}
}

// StatusOf maps a Parse error to its Status. A nil error maps to StatusValid.
func StatusOf(err error) Status {
	if err == nil {
		return StatusValid
	}
	var ve *VerificationError
	if !errors.As(err, &ve) {
		return StatusMalformed
	}
	switch ve.Reason {
	case ReasonEmpty:
		return StatusEmpty
	case ReasonSignature:
		return StatusBadSignature
	case ReasonAlgorithm:
		return StatusAlgorithmMismatch
	case ReasonKey:
		return StatusBadKey
	default:
		return StatusMalformed
	}
}

// Classify runs Parse and folds the result and the expiration check into one Status.
func Classify(token string, key string, method Method) Status {
	p, err := Parse(token, key, method)
	if err != nil {
		return StatusOf(err)
	}
	if !p.IsValid() {
		return StatusExpired
	}
	return StatusValid
}
