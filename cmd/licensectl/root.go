package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	goLicense "github.com/MrEthical07/goLicense"
	"github.com/MrEthical07/goLicense/jwt"
	"github.com/MrEthical07/goLicense/keys"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "licensectl",
		Short:         "Sign, inspect and verify license tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Flags().Changed("env-file"))
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before reading LICENSE_* variables")

	root.AddCommand(
		newNormalizeCmd(a),
		newSignCmd(a),
		newParseCmd(a),
		newVerifyCmd(a),
		newMatchCmd(a),
		newRevokeCmd(a),
		newReportCmd(a),
		newKeygenCmd(a),
	)
	return root
}

func newNormalizeCmd(a *app) *cobra.Command {
	var key, keyFile string
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Print a PEM key in canonical form (reads stdin when no flag is given)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := keyFromFlags(key, keyFile)
			if err != nil {
				return err
			}
			if raw == "" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				raw = string(b)
			}

			kind, err := keys.Detect(raw)
			if err != nil {
				return err
			}
			out, err := keys.Normalize(raw)
			if err != nil {
				return err
			}
			a.log.Debug("key normalized", zap.Stringer("kind", kind))
			fmt.Fprintln(a.out, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "key material")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "file holding the key")
	return cmd
}

func newSignCmd(a *app) *cobra.Command {
	var (
		key, keyFile         string
		expiresAt, expiresIn string
		payload              string
		lic                  goLicense.License
		planID               int
		extra                []string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a license and print the token",
		Long: "Sign a license built from flags, or an arbitrary JSON payload with --payload.\n" +
			"With LICENSE_PLANS_FILE set, --plan fills name, image, limits and permissions from the plan.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exp, err := expiryFromFlags(expiresAt, expiresIn)
			if err != nil {
				return err
			}
			signKey, err := a.signingKey(key, keyFile)
			if err != nil {
				return err
			}

			if payload != "" {
				method, err := a.method()
				if err != nil {
					return err
				}
				var claims map[string]any
				if err := json.Unmarshal([]byte(payload), &claims); err != nil {
					return fmt.Errorf("--payload: %w", err)
				}
				token, err := jwt.Sign(claims, signKey, exp, method)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, token)
				return nil
			}

			e, err := a.engineFor()
			if err != nil {
				return err
			}
			extraClaims, err := parseClaimPairs(extra)
			if err != nil {
				return err
			}
			lic.Extra = extraClaims

			ctx := cmd.Context()
			var token string
			if cmd.Flags().Changed("plan") && a.cfg.PlansFile != "" {
				token, err = e.IssueForPlan(ctx, planID, goLicense.Identity{
					Email:          lic.Email,
					ExternalUserID: lic.ExternalUserID,
					Extra:          lic.Extra,
				}, signKey, exp)
			} else {
				lic.PlanID = planID
				token, err = e.Issue(ctx, lic, signKey, exp)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, token)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&key, "key", "", "signing key (overrides the environment)")
	f.StringVar(&keyFile, "key-file", "", "file holding the signing key")
	f.StringVar(&expiresAt, "expires-at", "", "absolute expiry, RFC3339")
	f.StringVar(&expiresIn, "expires-in", "", `relative expiry such as "30d", "2 months" or "3600" (ms)`)
	f.StringVar(&payload, "payload", "", "raw JSON claims to sign instead of a license")
	f.StringVar(&lic.ID, "id", "", "license id (random when empty)")
	f.IntVar(&planID, "plan", 0, "plan id")
	f.StringVar(&lic.PlanName, "plan-name", "", "plan name")
	f.StringVar(&lic.Email, "email", "", "licensee email")
	f.StringVar(&lic.ExternalUserID, "external-user-id", "", "licensee id in the billing system")
	f.StringVar(&lic.Image, "image", "", "plan image")
	f.StringSliceVar(&lic.Permissions, "permission", nil, "granted permission (repeatable)")
	f.StringArrayVar(&extra, "claim", nil, "extra claim as key=value (repeatable)")
	return cmd
}

type parsedOutput struct {
	ID             string           `json:"id"`
	PlanID         int              `json:"planId"`
	PlanName       string           `json:"planName"`
	Email          string           `json:"email"`
	ExternalUserID string           `json:"externalUserId"`
	Image          string           `json:"image,omitempty"`
	Limits         map[string]int64 `json:"limits,omitempty"`
	Permissions    []string         `json:"permissions,omitempty"`
	Extra          map[string]any   `json:"extra,omitempty"`
	Algorithm      string           `json:"alg"`
	IssuedAt       *time.Time       `json:"issuedAt,omitempty"`
	ExpiresAt      *time.Time       `json:"expiresAt,omitempty"`
	Valid          bool             `json:"valid"`
}

type rawOutput struct {
	Claims    map[string]any `json:"claims"`
	Algorithm string         `json:"alg"`
	IssuedAt  *time.Time     `json:"issuedAt,omitempty"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
	Valid     bool           `json:"valid"`
}

func newParseCmd(a *app) *cobra.Command {
	var key, keyFile string
	var raw bool
	cmd := &cobra.Command{
		Use:   "parse TOKEN",
		Short: "Verify the signature and print the claims, expired or not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArg(cmd, args[0])
			if err != nil {
				return err
			}
			verifyKey, err := a.verificationKey(key, keyFile)
			if err != nil {
				return err
			}

			if raw {
				method, err := a.method()
				if err != nil {
					return err
				}
				p, err := jwt.Parse(token, verifyKey, method)
				if err != nil {
					return err
				}
				return writeJSON(a.out, rawOutput{
					Claims:    p.Claims,
					Algorithm: p.Algorithm,
					IssuedAt:  p.IssuedAt,
					ExpiresAt: p.ExpiresAt,
					Valid:     p.IsValid(),
				})
			}

			e, err := a.engineFor()
			if err != nil {
				return err
			}
			p, err := e.Parse(cmd.Context(), token, verifyKey)
			if err != nil {
				return err
			}
			return writeJSON(a.out, parsedOutput{
				ID:             p.ID,
				PlanID:         p.PlanID,
				PlanName:       p.PlanName,
				Email:          p.Email,
				ExternalUserID: p.ExternalUserID,
				Image:          p.Image,
				Limits:         p.Limits,
				Permissions:    p.Permissions,
				Extra:          p.Extra,
				Algorithm:      p.Algorithm,
				IssuedAt:       p.IssuedAt,
				ExpiresAt:      p.ExpiresAt,
				Valid:          p.IsValid(),
			})
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "verification key (overrides the environment)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "file holding the verification key")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the raw claim map instead of a license")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	var key, keyFile string
	cmd := &cobra.Command{
		Use:   "verify TOKEN",
		Short: "Exit 0 when the license is authentic, unexpired and not revoked; 1 otherwise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := tokenArg(cmd, args[0])
			if err != nil {
				return err
			}
			verifyKey, err := a.verificationKey(key, keyFile)
			if err != nil {
				return err
			}
			e, err := a.engineFor()
			if err != nil {
				return err
			}

			_, err = e.Check(cmd.Context(), token, verifyKey)
			fmt.Fprintln(a.out, verdict(err))
			if err != nil {
				a.log.Debug("license rejected", zap.Error(err))
				return errLicenseInvalid
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "verification key (overrides the environment)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "file holding the verification key")
	return cmd
}

func newMatchCmd(a *app) *cobra.Command {
	var key, keyFile, expected string
	cmd := &cobra.Command{
		Use:   "match TOKEN",
		Short: "Check that the license expiry agrees with --expected within two seconds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expected == "" {
				return errors.New("--expected is required")
			}
			want, err := time.Parse(time.RFC3339, expected)
			if err != nil {
				return fmt.Errorf("--expected: %w", err)
			}
			token, err := tokenArg(cmd, args[0])
			if err != nil {
				return err
			}
			verifyKey, err := a.verificationKey(key, keyFile)
			if err != nil {
				return err
			}
			e, err := a.engineFor()
			if err != nil {
				return err
			}
			p, err := e.Parse(cmd.Context(), token, verifyKey)
			if err != nil {
				return err
			}

			if e.ExpiryMatches(cmd.Context(), p, want) {
				fmt.Fprintln(a.out, "match")
				return nil
			}
			if p.ExpiresAt == nil {
				fmt.Fprintln(a.out, "drift: license never expires")
			} else {
				fmt.Fprintf(a.out, "drift: license expires %s, expected %s\n",
					p.ExpiresAt.UTC().Format(time.RFC3339), want.UTC().Format(time.RFC3339))
			}
			return errLicenseInvalid
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "verification key (overrides the environment)")
	cmd.Flags().StringVar(&keyFile, "key-file", "", "file holding the verification key")
	cmd.Flags().StringVar(&expected, "expected", "", "expected expiry, RFC3339")
	return cmd
}

func newRevokeCmd(a *app) *cobra.Command {
	var until, forSpan string
	cmd := &cobra.Command{
		Use:   "revoke LICENSE_ID",
		Short: "Put a license id on the redis revocation list (needs LICENSE_REDIS_ADDR)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.RedisAddr == "" {
				return fmt.Errorf("revocation needs %s", envRedisAddr)
			}
			deadline, err := revocationDeadline(time.Now(), until, forSpan)
			if err != nil {
				return err
			}
			e, err := a.engineFor()
			if err != nil {
				return err
			}
			if err := e.Revoke(cmd.Context(), args[0], deadline); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "revoked %s until %s\n", args[0], deadline.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&until, "until", "", "revocation deadline, RFC3339")
	cmd.Flags().StringVar(&forSpan, "for", "", `revocation span such as "30d"`)
	return cmd
}

func verdict(err error) string {
	switch {
	case err == nil:
		return jwt.StatusValid.String()
	case errors.Is(err, goLicense.ErrLicenseExpired):
		return jwt.StatusExpired.String()
	case errors.Is(err, goLicense.ErrLicenseRevoked):
		return "revoked"
	case errors.Is(err, goLicense.ErrRevocationUnavailable):
		return "revocation_unavailable"
	case errors.Is(err, goLicense.ErrInvalidLicense):
		return "invalid_claims"
	default:
		return jwt.StatusOf(err).String()
	}
}

func expiryFromFlags(at, in string) (jwt.Expiry, error) {
	switch {
	case at != "" && in != "":
		return jwt.Expiry{}, errors.New("--expires-at and --expires-in are mutually exclusive")
	case at != "":
		t, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return jwt.Expiry{}, fmt.Errorf("--expires-at: %w", err)
		}
		return jwt.At(t), nil
	case in != "":
		if _, err := jwt.ParseSpan(in); err != nil {
			return jwt.Expiry{}, fmt.Errorf("--expires-in: %w", err)
		}
		return jwt.In(in), nil
	default:
		return jwt.Never(), nil
	}
}

func revocationDeadline(now time.Time, until, forSpan string) (time.Time, error) {
	switch {
	case until != "" && forSpan != "":
		return time.Time{}, errors.New("--until and --for are mutually exclusive")
	case until != "":
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return time.Time{}, fmt.Errorf("--until: %w", err)
		}
		return t, nil
	case forSpan != "":
		d, err := jwt.ParseSpan(forSpan)
		if err != nil {
			return time.Time{}, fmt.Errorf("--for: %w", err)
		}
		return now.Add(d), nil
	default:
		return time.Time{}, errors.New("one of --until or --for is required")
	}
}

// parseClaimPairs turns key=value flags into claims. Values that parse as JSON
// (numbers, booleans, objects) keep their type; anything else is a string.
func parseClaimPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--claim %q: want key=value", p)
		}
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			out[k] = decoded
			continue
		}
		out[k] = v
	}
	return out, nil
}

// tokenArg returns arg, or the first line of stdin when arg is "-".
func tokenArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
