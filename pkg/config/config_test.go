package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.Redis.Enabled())
	assert.True(t, cfg.Metrics.Enabled)
}

func TestFromViper_ValoresExplicitos(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "SQLite")
	v.Set("HTTP_PORT", "9090")
	v.Set("REDIS_ADDR", "redis:6379")
	v.Set("DB_MAX_CONNS", "abc")
	v.Set("METRICS_ENABLED", "false")

	cfg, err := fromViper(v)
	require.NoError(t, err)
	assert.Equal(t, StoreDriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 25, cfg.DB.MaxConns, "un entero inválido usa el valor por defecto")
	assert.False(t, cfg.Metrics.Enabled)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")
	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "lab", Password: "p@ss/word", DBName: "labstock", SSLMode: "disable"}
	assert.Equal(t, "postgres://lab:p%40ss%2Fword@db:5432/labstock?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
