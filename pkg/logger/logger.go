package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Logger *zap.Logger

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func init() {
	lc := zap.NewDevelopmentConfig()
	lc.EncoderConfig.TimeKey = ""
	lc.Level = level
	Logger, _ = lc.Build()
	if Logger == nil {
		Logger = zap.NewNop()
	}
}

//SetLevel changes the level of the global logger. Accepts the zap level names (debug, info, warn, error...)
func SetLevel(s string) error {
	return level.UnmarshalText([]byte(s))
}

//Level returns the current level of the global logger
func Level() string {
	return level.Level().String()
}
