package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTOML = `
service_name = "shop-test"
environment = "staging"

[http]
port = 9000

[database]
driver = "sqlite"
dsn = "file:test.db"

[redis]
host = "127.0.0.1"

[kafka]
brokers = ["k1:9092", "k2:9092"]

[auth]
jwt_secret = "0123456789abcdef0123"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "shop-test", cfg.ServiceName)
	assert.Equal(t, 9000, cfg.HTTP.Port)
	assert.Equal(t, 50051, cfg.GRPC.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 900, cfg.Order.CacheTTL)
	assert.Equal(t, 24*60, cfg.Auth.TokenTTL)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_HTTP_PORT", "9100")
	t.Setenv("APP_DATABASE_DSN", "file:env.db")

	cfg, err := Load(writeConfig(t, sampleTOML))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.HTTP.Port)
	assert.Equal(t, "file:env.db", cfg.Database.DSN)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("APP_DATABASE_DSN", "root@tcp(localhost:3306)/shop")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.ServiceName)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.False(t, cfg.Redis.Enabled())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			ServiceName: "shop",
			HTTP:        HTTPConfig{Port: 8080},
			GRPC:        GRPCConfig{Port: 50051},
			Database:    DatabaseConfig{Driver: "mysql", DSN: "dsn"},
			Auth:        AuthConfig{JWTSecret: "0123456789abcdef"},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "dev", cfg.Environment)

	cfg = valid()
	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Auth.JWTSecret = "short"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.Environment = "prod"
	cfg.Auth.JWTSecret = defaultJWTSecret
	assert.Error(t, cfg.Validate())
}
