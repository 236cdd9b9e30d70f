// Package keys canonicalizes PEM key material that arrives with mangled line
// breaks, typically from environment variables or single-line config values.
//
// Only two block shapes are recognized: PKIX public keys and PKCS#1 RSA private
// keys. Anything else is rejected with [ErrKeyFormat].
package keys
