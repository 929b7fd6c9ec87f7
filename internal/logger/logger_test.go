package logger

import (
	"testing"

	"github.com/deppfellow/consultdesk/internal/config"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestGetPgxTraceLogLevel(t *testing.T) {
	assert.Equal(t, int(tracelog.LogLevelDebug), GetPgxTraceLogLevel(zerolog.DebugLevel))
	assert.Equal(t, int(tracelog.LogLevelInfo), GetPgxTraceLogLevel(zerolog.InfoLevel))
	assert.Equal(t, int(tracelog.LogLevelWarn), GetPgxTraceLogLevel(zerolog.WarnLevel))
	assert.Equal(t, int(tracelog.LogLevelError), GetPgxTraceLogLevel(zerolog.ErrorLevel))
	assert.Equal(t, int(tracelog.LogLevelNone), GetPgxTraceLogLevel(zerolog.Disabled))
}

func TestNewLoggerService_WithoutLicense(t *testing.T) {
	svc := NewLoggerService(config.DefaultObservabilityConfig())

	assert.Nil(t, svc.GetApplication())

	// both are safe without an agent
	svc.RecordEvent("Anything", map[string]interface{}{"k": "v"})
	svc.Shutdown()
}

func TestNewLoggerWithService_UsesConfiguredLevel(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	log := NewLoggerWithService(cfg, nil)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	base := zerolog.Nop()
	assert.Equal(t, base, WithTraceContext(base, nil))
}
