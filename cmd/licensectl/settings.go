package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envPrivateKey = "LICENSE_PRIVATE_KEY"
	envPublicKey  = "LICENSE_PUBLIC_KEY"
	envSecret     = "LICENSE_SECRET"
	envAlgorithm  = "LICENSE_ALGORITHM"
	envPlansFile  = "LICENSE_PLANS_FILE"
	envRedisAddr  = "LICENSE_REDIS_ADDR"
	envLogLevel   = "LICENSE_LOG_LEVEL"
	envLogFormat  = "LICENSE_LOG_FORMAT"
	envFailOpen   = "LICENSE_REVOCATION_FAIL_OPEN"
)

// settings is the environment-derived configuration shared by every subcommand.
type settings struct {
	Algorithm  string
	PrivateKey string
	PublicKey  string
	Secret     string
	PlansFile  string
	RedisAddr  string
	LogLevel   string
	LogFormat  string
	FailOpen   bool
}

// loadSettings reads envFile into the process environment and then the
// LICENSE_* variables. Variables already set in the environment win over the
// file. A missing file is only an error when the caller named it explicitly.
func loadSettings(envFile string, explicit bool) (settings, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return settings{}, fmt.Errorf("load env file %s: %w", envFile, err)
			}
		}
	}

	failOpen := false
	if v := strings.TrimSpace(os.Getenv(envFailOpen)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return settings{}, fmt.Errorf("%s: %w", envFailOpen, err)
		}
		failOpen = b
	}

	return settings{
		Algorithm:  envOr(envAlgorithm, "RS256"),
		PrivateKey: os.Getenv(envPrivateKey),
		PublicKey:  os.Getenv(envPublicKey),
		Secret:     os.Getenv(envSecret),
		PlansFile:  strings.TrimSpace(os.Getenv(envPlansFile)),
		RedisAddr:  strings.TrimSpace(os.Getenv(envRedisAddr)),
		LogLevel:   envOr(envLogLevel, "warn"),
		LogFormat:  envOr(envLogFormat, "console"),
		FailOpen:   failOpen,
	}, nil
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
