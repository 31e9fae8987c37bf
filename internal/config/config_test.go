package config

import (
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	require.Equal(t, ":8081", cfg.HTTPAddr)
	require.Equal(t, []string{"kafka:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 5*time.Second, cfg.TxTimeout)
	require.Equal(t, 12*time.Hour, cfg.AdminTokenTTL)
	require.Equal(t, int32(8), cfg.DBMaxConns)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("TX_TIMEOUT", "2s")
	t.Setenv("PROJECTOR_WORKERS", "16")

	cfg := Load()
	require.Equal(t, ":9000", cfg.HTTPAddr)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, 2*time.Second, cfg.TxTimeout)
	require.Equal(t, 16, cfg.ProjectorWorkers)
}

func TestLoad_JWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOG_ENCODING", "json")
	cfg := Load()
	require.Empty(t, cfg.JWTSecret)
	require.ErrorIs(t, cfg.RequireJWTSecret(), ErrJWTSecretMissing)

	t.Setenv("LOG_ENCODING", "console")
	cfg = Load()
	require.Equal(t, devJWTSecret, cfg.JWTSecret)
	require.NoError(t, cfg.RequireJWTSecret())

	t.Setenv("JWT_SECRET", "s3cret")
	cfg = Load()
	require.Equal(t, "s3cret", cfg.JWTSecret)
	require.NoError(t, cfg.RequireJWTSecret())
}
