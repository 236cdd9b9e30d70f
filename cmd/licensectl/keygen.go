package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newKeygenCmd(a *app) *cobra.Command {
	var (
		bits   int
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an RSA key pair for local testing",
		Long: "Generate a PKCS#1 RSA private key and its PKIX public key.\n" +
			"With --out the pair is written to private.pem and public.pem, otherwise printed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, pub, err := generateRSAPair(bits)
			if err != nil {
				return err
			}
			if outDir == "" {
				fmt.Fprintln(a.out, priv)
				fmt.Fprintln(a.out, pub)
				return nil
			}

			if err := os.MkdirAll(outDir, 0o700); err != nil {
				return err
			}
			privPath := filepath.Join(outDir, "private.pem")
			pubPath := filepath.Join(outDir, "public.pem")
			if err := os.WriteFile(privPath, []byte(priv+"\n"), 0o600); err != nil {
				return err
			}
			if err := os.WriteFile(pubPath, []byte(pub+"\n"), 0o644); err != nil {
				return err
			}
			a.log.Info("key pair written", zap.String("private", privPath), zap.String("public", pubPath), zap.Int("bits", bits))
			fmt.Fprintln(a.out, privPath)
			fmt.Fprintln(a.out, pubPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA modulus size")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for private.pem and public.pem")
	return cmd
}

func generateRSAPair(bits int) (string, string, error) {
	if bits < 1024 {
		return "", "", fmt.Errorf("--bits must be >= 1024, got %d", bits)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", "", fmt.Errorf("generate rsa key: %w", err)
	}
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", fmt.Errorf("marshal public key: %w", err)
	}
	priv := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pub := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return strings.TrimSpace(string(priv)), strings.TrimSpace(string(pub)), nil
}
