package jwt

import (
	"errors"
	"fmt"
)

var (
	// ErrSigning wraps every failure reported while producing a token.
	ErrSigning = errors.New("license token signing failed")
	// ErrVerification is matched by every *VerificationError.
	ErrVerification = errors.New("license token verification failed")
	// ErrInvalidExpiry is returned for duration expressions that cannot be parsed.
	ErrInvalidExpiry = errors.New("invalid expiry expression")

	errAlgorithmMismatch = errors.New("unexpected signing algorithm")
)

// Reason classifies why a token failed verification.
type Reason string

const (
	// ReasonEmpty means no token text was supplied.
	ReasonEmpty Reason = "empty"
	// ReasonMalformed means the text is not a structurally valid token.
	ReasonMalformed Reason = "malformed"
	// ReasonSignature means the signature does not match the key.
	ReasonSignature Reason = "signature"
	// ReasonAlgorithm means the token declares an algorithm other than the expected one.
	ReasonAlgorithm Reason = "algorithm"
	// ReasonKey means the verification key itself is unusable.
	ReasonKey Reason = "key"
)

// VerificationError is returned by Parse. It matches ErrVerification and, when
// the key was rejected, keys.ErrKeyFormat through errors.Is.
type VerificationError struct {
	Reason Reason
	Err    error
}

func (e *VerificationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrVerification, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrVerification, e.Reason, e.Err)
}

func (e *VerificationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrVerification}
	}
	return []error{ErrVerification, e.Err}
}

func verificationError(reason Reason, err error) *VerificationError {
	return &VerificationError{Reason: reason, Err: err}
}

func signingError(err error) error {
	return fmt.Errorf("%w: %w", ErrSigning, err)
}
