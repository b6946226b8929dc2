package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZapLogger builds the structured run log. format is "json" or "console"; outputPath is a
// file path, or "stdout"/"stderr".
func NewZapLogger(format, level, outputPath string) (*zap.Logger, error) {
	var zapCfg zap.Config
	if strings.EqualFold(format, "console") {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	if outputPath != "" {
		zapCfg.OutputPaths = []string{outputPath}
	}

	parsed, _ := ParseLevel(level)
	zapCfg.Level = zap.NewAtomicLevelAt(parsed.zapLevel())

	return zapCfg.Build()
}
