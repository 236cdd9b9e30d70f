package jwt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/goLicense/keys"
	gjwt "github.com/golang-jwt/jwt/v5"
)

// Method selects the signature algorithm.
type Method string

const (
	// MethodRS256 signs with an RSA private key and verifies with the public key.
	MethodRS256 Method = "RS256"
	// MethodHS256 signs and verifies with one shared secret.
	MethodHS256 Method = "HS256"
)

// ParseMethod accepts "RS256"/"HS256" in any case. Empty selects RS256.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "RS256":
		return MethodRS256, nil
	case "HS256":
		return MethodHS256, nil
	default:
		return "", fmt.Errorf("unsupported signing method %q", s)
	}
}

func (m Method) signingMethod() (gjwt.SigningMethod, error) {
	switch m {
	case MethodRS256, "":
		return gjwt.SigningMethodRS256, nil
	case MethodHS256:
		return gjwt.SigningMethodHS256, nil
	default:
		return nil, fmt.Errorf("unsupported signing method %q", string(m))
	}
}

func (m Method) signKey(key string) (interface{}, error) {
	if m == MethodHS256 {
		if key == "" {
			return nil, errors.New("hs256 requires a non-empty secret")
		}
		return []byte(key), nil
	}

	normalized, err := keys.Normalize(key)
	if err != nil {
		return nil, err
	}
	priv, err := gjwt.ParseRSAPrivateKeyFromPEM([]byte(normalized))
	if err != nil {
		return nil, fmt.Errorf("invalid rsa private key: %w", err)
	}
	return priv, nil
}

func (m Method) verifyKey(key string) (interface{}, error) {
	if m == MethodHS256 {
		if key == "" {
			return nil, errors.New("hs256 requires a non-empty secret")
		}
		return []byte(key), nil
	}

	normalized, err := keys.Normalize(key)
	if err != nil {
		return nil, err
	}
	kind, _ := keys.Detect(normalized)
	if kind == keys.KindRSAPrivate {
		priv, err := gjwt.ParseRSAPrivateKeyFromPEM([]byte(normalized))
		if err != nil {
			return nil, fmt.Errorf("invalid rsa private key: %w", err)
		}
		return &priv.PublicKey, nil
	}
	pub, err := gjwt.ParseRSAPublicKeyFromPEM([]byte(normalized))
	if err != nil {
		return nil, fmt.Errorf("invalid rsa public key: %w", err)
	}
	return pub, nil
}
