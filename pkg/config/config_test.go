package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_ValoresPorDefecto(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 6, cfg.Password.MinLength)
	assert.True(t, cfg.Password.RequireDigit)
	assert.False(t, cfg.Password.RequireNonAlphanumeric)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, 5, cfg.RateLimit.Burst)
}

func TestFromViper_Sobrescrituras(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "Memory")
	v.Set("HTTP_PORT", "9090")
	v.Set("PASSWORD_REQUIRE_DIGIT", "false")
	v.Set("LOGIN_RATE_PER_SECOND", "2.5")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.False(t, cfg.Password.RequireDigit)
	assert.InDelta(t, 2.5, cfg.RateLimit.PerSecond, 0.0001)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "authlog", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/authlog?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}

func TestPasswordConfig_Policy(t *testing.T) {
	pc := PasswordConfig{MinLength: 8, RequireDigit: true, RequireNonAlphanumeric: true}
	p := pc.Policy()

	assert.Equal(t, 8, p.MinLength)
	assert.True(t, p.RequireDigit)
	assert.False(t, p.RequireUppercase)
	assert.Len(t, p.Validate("abcdefgh"), 2)
}
