package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		errMsg  string
		check   func(*testing.T, *Config)
	}{
		{
			name: "default configuration",
			envVars: map[string]string{
				"JWT_SECRET": testSecret,
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "development", cfg.Environment)
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, "localhost", cfg.Database.Host)
				assert.Equal(t, 5432, cfg.Database.Port)
				assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
				assert.Equal(t, "bcrypt", cfg.Auth.PasswordHasher)
				assert.Equal(t, 10, cfg.Auth.BcryptCost)
				assert.Equal(t, 5, cfg.LoginGuard.MaxFailures)
				assert.Equal(t, 15*time.Minute, cfg.LoginGuard.Window)
				assert.Empty(t, cfg.LoginGuard.RedisURL)
				assert.True(t, cfg.Observability.MetricsEnabled)
			},
		},
		{
			name: "auth overrides",
			envVars: map[string]string{
				"JWT_SECRET":      testSecret,
				"JWT_TTL":         "90m",
				"PASSWORD_HASHER": "ARGON2ID",
				"BCRYPT_COST":     "12",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
				assert.Equal(t, "argon2id", cfg.Auth.PasswordHasher)
				assert.Equal(t, 12, cfg.Auth.BcryptCost)
			},
		},
		{
			name: "login guard with redis",
			envVars: map[string]string{
				"JWT_SECRET":           testSecret,
				"LOGIN_MAX_FAILURES":   "3",
				"LOGIN_LOCKOUT_WINDOW": "1m",
				"REDIS_URL":            "redis://localhost:6379/0",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 3, cfg.LoginGuard.MaxFailures)
				assert.Equal(t, time.Minute, cfg.LoginGuard.Window)
				assert.Equal(t, "redis://localhost:6379/0", cfg.LoginGuard.RedisURL)
			},
		},
		{
			name: "cors origins",
			envVars: map[string]string{
				"JWT_SECRET":           testSecret,
				"CORS_ALLOWED_ORIGINS": "https://a.example.com, https://b.example.com,",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
			},
		},
		{
			name: "DATABASE_URL takes precedence",
			envVars: map[string]string{
				"JWT_SECRET":   testSecret,
				"DATABASE_URL": "postgres://u:p@db:5433/clinic?sslmode=disable",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "postgres://u:p@db:5433/clinic?sslmode=disable", cfg.Database.DSN())
				assert.Equal(t, "host=db port=5433 database=clinic", cfg.Database.LogString())
			},
		},
		{
			name: "PORT env var takes precedence over SERVER_PORT",
			envVars: map[string]string{
				"JWT_SECRET":  testSecret,
				"PORT":        "9443",
				"SERVER_PORT": "9000",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9443, cfg.Server.Port)
			},
		},
		{
			name:    "missing secret is fatal",
			envVars: map[string]string{},
			wantErr: true,
			errMsg:  "JWT_SECRET is required",
		},
		{
			name: "short secret is fatal",
			envVars: map[string]string{
				"JWT_SECRET": "too-short",
			},
			wantErr: true,
			errMsg:  "at least 32 bytes",
		},
		{
			name: "zero ttl is fatal",
			envVars: map[string]string{
				"JWT_SECRET": testSecret,
				"JWT_TTL":    "0s",
			},
			wantErr: true,
			errMsg:  "JWT_TTL must be a positive duration",
		},
		{
			name: "negative ttl is fatal",
			envVars: map[string]string{
				"JWT_SECRET": testSecret,
				"JWT_TTL":    "-5m",
			},
			wantErr: true,
			errMsg:  "JWT_TTL must be a positive duration",
		},
		{
			name: "unparseable ttl is fatal",
			envVars: map[string]string{
				"JWT_SECRET": testSecret,
				"JWT_TTL":    "one day",
			},
			wantErr: true,
			errMsg:  "JWT_TTL must be a positive duration",
		},
		{
			name: "unknown hasher",
			envVars: map[string]string{
				"JWT_SECRET":      testSecret,
				"PASSWORD_HASHER": "md5",
			},
			wantErr: true,
			errMsg:  "unsupported password hasher",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := New(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func validConfig() *Config {
	return &Config{
		Environment: "development",
		Database: DatabaseConfig{
			Host:     "localhost",
			User:     "user",
			Database: "db",
		},
		Auth: AuthConfig{
			JWTSecret:      testSecret,
			TokenTTL:       time.Hour,
			PasswordHasher: "bcrypt",
			BcryptCost:     10,
		},
		LoginGuard: LoginGuardConfig{
			MaxFailures: 5,
			Window:      time.Minute,
		},
		Observability: ObservabilityConfig{
			LogLevel: "info",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid development config",
			mutate: func(*Config) {},
		},
		{
			name:    "missing database host",
			mutate:  func(c *Config) { c.Database.Host = "" },
			wantErr: true,
			errMsg:  "database configuration required",
		},
		{
			name:    "missing database user",
			mutate:  func(c *Config) { c.Database.User = "" },
			wantErr: true,
			errMsg:  "database user is required",
		},
		{
			name:    "bcrypt cost out of range",
			mutate:  func(c *Config) { c.Auth.BcryptCost = 3 },
			wantErr: true,
			errMsg:  "bcrypt cost",
		},
		{
			name:    "login guard without failures",
			mutate:  func(c *Config) { c.LoginGuard.MaxFailures = 0 },
			wantErr: true,
			errMsg:  "login max failures",
		},
		{
			name:    "login guard without window",
			mutate:  func(c *Config) { c.LoginGuard.Window = 0 },
			wantErr: true,
			errMsg:  "lockout window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_LogString_OmitsSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Password = "db-password"

	out := cfg.LogString()

	assert.NotContains(t, out, testSecret)
	assert.NotContains(t, out, "db-password")
	assert.Contains(t, out, "token_ttl=1h0m0s")
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		want        bool
	}{
		{"production", "production", true},
		{"prod", "prod", true},
		{"development", "development", false},
		{"staging", "staging", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Environment: tt.environment}
			assert.Equal(t, tt.want, cfg.IsProduction())
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "testuser",
		Password: "testpass",
		Database: "testdb",
		SSLMode:  "disable",
	}

	expected := "host=localhost port=5432 user=testuser password=testpass dbname=testdb sslmode=disable"
	assert.Equal(t, expected, cfg.DSN())
}

func TestServerConfig_Address(t *testing.T) {
	cfg := ServerConfig{
		Host: "0.0.0.0",
		Port: 8080,
	}

	assert.Equal(t, "0.0.0.0:8080", cfg.Address())
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue int
		want         int
	}{
		{"valid int", "42", 10, 42},
		{"empty value", "", 10, 10},
		{"invalid int", "not-a-number", 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_INT", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsInt("TEST_INT", tt.defaultValue))
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", "true", false, true},
		{"false", "false", true, false},
		{"empty value", "", true, true},
		{"invalid bool", "not-a-bool", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_BOOL", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsBool("TEST_BOOL", tt.defaultValue))
		})
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue time.Duration
		want         time.Duration
	}{
		{"valid duration", "30s", 10 * time.Second, 30 * time.Second},
		{"empty value", "", 10 * time.Second, 10 * time.Second},
		{"invalid duration", "not-a-duration", 10 * time.Second, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			if tt.value != "" {
				os.Setenv("TEST_DURATION", tt.value)
			}
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_DURATION", tt.defaultValue))
		})
	}
}
