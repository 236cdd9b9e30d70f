package test

import (
	"context"
	"errors"
	"fmt"
	"time"

	goLicense "github.com/MrEthical07/goLicense"
	"github.com/MrEthical07/goLicense/jwt"
	"github.com/MrEthical07/goLicense/keys"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates engine construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	engine, _ := goLicense.New().
		WithRedis(rdb).
		WithMetricsEnabled(true).
		Build()
	_ = engine
}

// ExampleEngine_Check shows strict verification with structured error handling.
func ExampleEngine_Check() {
	engine, _ := goLicense.New().WithAlgorithm(jwt.MethodHS256).Build()
	defer engine.Close()

	ctx := context.Background()
	token, _ := engine.Issue(ctx, goLicense.License{ID: "lic-1", PlanName: "Pro"}, "secret", jwt.At(time.Now().Add(-time.Minute)))

	lic, err := engine.Check(ctx, token, "secret")
	switch {
	case err == nil:
		fmt.Println("valid")
	case lic != nil && errors.Is(err, goLicense.ErrLicenseExpired):
		fmt.Println("expired", lic.ID)
	default:
		fmt.Println("rejected:", jwt.StatusOf(err))
	}
	// Output: expired lic-1
}

// ExampleNormalize shows a key pasted into an environment variable on one line.
func ExampleNormalize() {
	out, err := keys.Normalize(`-----BEGIN PUBLIC KEY-----\nMFww\nDQYJ-----END PUBLIC KEY-----`)
	fmt.Println(out, err)
	// Output:
	// -----BEGIN PUBLIC KEY-----
	// MFww
	// DQYJ
	// -----END PUBLIC KEY----- <nil>
}

// ExampleParseSpan lists how relative expiry expressions resolve.
func ExampleParseSpan() {
	for _, expr := range []string{"30d", "2 months", "90 minutes", "3600"} {
		d, _ := jwt.ParseSpan(expr)
		fmt.Println(expr, "=", d)
	}
	// Output:
	// 30d = 720h0m0s
	// 2 months = 1461h0m0s
	// 90 minutes = 1h30m0s
	// 3600 = 3.6s
}
