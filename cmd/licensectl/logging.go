package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	goLicense "github.com/MrEthical07/goLicense"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newLogger(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(format) {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "console", "":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("log format %q: want json or console", format)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), zap.NewAtomicLevelAt(lvl))
	return zap.New(core).Named("licensectl"), nil
}

// zapAuditSink writes engine audit events as structured log lines. Successful
// operations log at info, failures at warn.
type zapAuditSink struct {
	log *zap.Logger
}

func (s zapAuditSink) Emit(_ context.Context, ev goLicense.AuditEvent) {
	fields := []zap.Field{
		zap.String("event", ev.EventType),
		zap.Bool("success", ev.Success),
		zap.Time("at", ev.Timestamp),
	}
	if ev.LicenseID != "" {
		fields = append(fields, zap.String("license_id", ev.LicenseID))
	}
	if ev.PlanID != nil {
		fields = append(fields, zap.Int("plan_id", *ev.PlanID))
	}
	if ev.Algorithm != "" {
		fields = append(fields, zap.String("alg", ev.Algorithm))
	}
	if ev.Error != "" {
		fields = append(fields, zap.String("error", ev.Error))
	}
	if len(ev.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", ev.Metadata))
	}

	if ev.Success {
		s.log.Info("license audit", fields...)
		return
	}
	s.log.Warn("license audit", fields...)
}
