// Package logger builds the zap logger shared by the services and tools.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger for env "production" and a colored
// development logger otherwise. The result is also installed as zap's global logger.
func New(env string) (*zap.Logger, error) {
	var zcfg zap.Config
	if env == "production" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(l)
	return l, nil
}

// Must is New that falls back to a no-op logger instead of failing.
func Must(env string) *zap.Logger {
	l, err := New(env)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
