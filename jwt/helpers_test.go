package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"sync"
	"testing"
)

type pemPair struct {
	private string
	public  string
}

var (
	pairsOnce sync.Once
	pairs     [2]pemPair
	pairsErr  error
)

// testPairs returns two independent RSA key pairs shared by the package tests.
func testPairs(t testing.TB) (pemPair, pemPair) {
	t.Helper()
	pairsOnce.Do(func() {
		for i := range pairs {
			key, err := rsa.GenerateKey(rand.Reader, 2048)
			if err != nil {
				pairsErr = err
				return
			}
			der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
			if err != nil {
				pairsErr = err
				return
			}
			pairs[i] = pemPair{
				private: strings.TrimSpace(string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}))),
				public:  strings.TrimSpace(string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))),
			}
		}
	})
	if pairsErr != nil {
		t.Fatalf("generate rsa keys: %v", pairsErr)
	}
	return pairs[0], pairs[1]
}
