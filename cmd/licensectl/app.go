package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	goLicense "github.com/MrEthical07/goLicense"
	"github.com/MrEthical07/goLicense/jwt"
	"github.com/MrEthical07/goLicense/plans"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// errLicenseInvalid marks a command that ran correctly but rejected its input
// license. main maps it to exit code 1.
var errLicenseInvalid = errors.New("license invalid")

type app struct {
	out    io.Writer
	errOut io.Writer

	envFile string
	cfg     settings
	log     *zap.Logger

	engine *goLicense.Engine
	redis  *redis.Client
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut, log: zap.NewNop()}
}

func (a *app) init(explicitEnvFile bool) error {
	cfg, err := loadSettings(a.envFile, explicitEnvFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, err := newLogger(a.errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

func (a *app) method() (jwt.Method, error) {
	return jwt.ParseMethod(a.cfg.Algorithm)
}

// engineFor builds the engine on first use so commands that never touch it
// (normalize, keygen) do not need a plans file or redis.
func (a *app) engineFor() (*goLicense.Engine, error) {
	if a.engine != nil {
		return a.engine, nil
	}

	method, err := a.method()
	if err != nil {
		return nil, err
	}

	b := goLicense.New().
		WithConfig(a.engineConfig(method)).
		WithAuditSink(zapAuditSink{log: a.log})

	if a.cfg.PlansFile != "" {
		reg, err := plans.LoadFile(a.cfg.PlansFile)
		if err != nil {
			return nil, err
		}
		b = b.WithPlanRegistry(reg)
		a.log.Debug("plan registry loaded", zap.String("path", a.cfg.PlansFile), zap.Ints("plans", reg.IDs()))
	}

	if a.cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr})
		b = b.WithRedis(a.redis)
		a.log.Debug("revocation list enabled", zap.String("redis", a.cfg.RedisAddr))
	}

	e, err := b.Build()
	if err != nil {
		return nil, err
	}
	a.engine = e
	return e, nil
}

func (a *app) engineConfig(method jwt.Method) goLicense.Config {
	cfg := goLicense.DefaultConfig()
	cfg.Algorithm = method
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Revocation.FailOpen = a.cfg.FailOpen
	return cfg
}

func (a *app) close() {
	if a.engine != nil {
		a.engine.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.log.Sync()
}

// signingKey resolves the key used to sign: --key, then --key-file, then the
// environment (LICENSE_SECRET for HS256, LICENSE_PRIVATE_KEY otherwise).
func (a *app) signingKey(flagKey, flagFile string) (string, error) {
	if k, err := keyFromFlags(flagKey, flagFile); k != "" || err != nil {
		return k, err
	}
	method, err := a.method()
	if err != nil {
		return "", err
	}
	if method == jwt.MethodHS256 {
		if a.cfg.Secret == "" {
			return "", fmt.Errorf("no secret: set --key, --key-file or %s", envSecret)
		}
		return a.cfg.Secret, nil
	}
	if a.cfg.PrivateKey == "" {
		return "", fmt.Errorf("no private key: set --key, --key-file or %s", envPrivateKey)
	}
	return a.cfg.PrivateKey, nil
}

// verificationKey is like signingKey but prefers LICENSE_PUBLIC_KEY and falls
// back to the private key for RS256.
func (a *app) verificationKey(flagKey, flagFile string) (string, error) {
	if k, err := keyFromFlags(flagKey, flagFile); k != "" || err != nil {
		return k, err
	}
	method, err := a.method()
	if err != nil {
		return "", err
	}
	if method == jwt.MethodHS256 {
		if a.cfg.Secret == "" {
			return "", fmt.Errorf("no secret: set --key, --key-file or %s", envSecret)
		}
		return a.cfg.Secret, nil
	}
	switch {
	case a.cfg.PublicKey != "":
		return a.cfg.PublicKey, nil
	case a.cfg.PrivateKey != "":
		return a.cfg.PrivateKey, nil
	default:
		return "", fmt.Errorf("no public key: set --key, --key-file, %s or %s", envPublicKey, envPrivateKey)
	}
}

func keyFromFlags(key, file string) (string, error) {
	if key != "" && file != "" {
		return "", errors.New("--key and --key-file are mutually exclusive")
	}
	if key != "" {
		return key, nil
	}
	if file == "" {
		return "", nil
	}
	raw, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", fmt.Errorf("key file %s is empty", file)
	}
	return string(raw), nil
}
