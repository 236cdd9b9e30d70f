package goLicense

import (
	"errors"

	"github.com/MrEthical07/goLicense/internal/audit"
	"github.com/MrEthical07/goLicense/jwt"
	"github.com/MrEthical07/goLicense/plans"
	"github.com/MrEthical07/goLicense/revocation"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine]. A Builder can be built once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	revocations revocation.Store
	plans       plans.Registry
	auditSink   AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. A sink set with WithAuditSink,
// before or after, still turns auditing on.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithAlgorithm overrides Config.Algorithm.
func (b *Builder) WithAlgorithm(m jwt.Method) *Builder {
	b.config.Algorithm = m
	return b
}

// WithRedis enables the redis revocation list unless a store was set explicitly.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithRevocationStore sets the revocation list backend. It takes precedence over WithRedis.
func (b *Builder) WithRevocationStore(store revocation.Store) *Builder {
	b.revocations = store
	return b
}

// WithPlanRegistry sets the registry used by IssueForPlan.
func (b *Builder) WithPlanRegistry(r plans.Registry) *Builder {
	b.plans = r
	return b
}

// WithAuditSink sets the audit sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if cfg.Algorithm == "" {
		cfg.Algorithm = jwt.MethodRS256
	}
	if b.auditSink != nil {
		cfg.Audit.Enabled = true
		if cfg.Audit.BufferSize <= 0 {
			cfg.Audit.BufferSize = defaultConfig().Audit.BufferSize
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	method, _ := jwt.ParseMethod(string(cfg.Algorithm))
	cfg.Algorithm = method

	store := b.revocations
	if store == nil && b.redis != nil {
		store = revocation.NewRedisStore(b.redis, cfg.Revocation.RedisPrefix)
	}

	engine := &Engine{
		config:      cfg,
		method:      method,
		revocations: store,
		plans:       b.plans,
		metrics:     NewMetrics(cfg.Metrics),
		audit: audit.NewDispatcher(audit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	b.built = true

	return engine, nil
}
