package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Server.Port)
	require.True(t, cfg.Hobex.Enabled)
	require.Equal(t, DefaultHobexTestingURL, cfg.Hobex.TestingURL)
	require.Equal(t, DefaultHobexProductionURL, cfg.Hobex.ProductionURL)
	require.Equal(t, 12, cfg.Hobex.PollAttempts)
	require.Equal(t, 5*time.Second, cfg.Hobex.PollInterval)
	require.Equal(t, 12*time.Hour, cfg.Hobex.TokenRefreshInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/pos")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("HOBEX_ENABLED", "false")
	t.Setenv("HOBEX_POLL_ATTEMPTS", "3")
	t.Setenv("HOBEX_POLL_INTERVAL", "250ms")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.False(t, cfg.Hobex.Enabled)
	require.Equal(t, 3, cfg.Hobex.PollAttempts)
	require.Equal(t, 250*time.Millisecond, cfg.Hobex.PollInterval)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("DATABASE_URL", "x")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.EqualError(t, err, "unsupported DB_DRIVER=mysql")
}

func TestLoadRejectsNonPositiveDurations(t *testing.T) {
	cases := []struct {
		key, value, want string
	}{
		{"HOBEX_TOKEN_REFRESH_INTERVAL", "0s", "HOBEX_TOKEN_REFRESH_INTERVAL must be positive"},
		{"HOBEX_TOKEN_REFRESH_INTERVAL", "-1h", "HOBEX_TOKEN_REFRESH_INTERVAL must be positive"},
		{"HOBEX_POLL_INTERVAL", "-5s", "HOBEX_POLL_INTERVAL must not be negative"},
		{"JWT_TTL", "0s", "JWT_TTL must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "file::memory:")
			t.Setenv("DB_DRIVER", "sqlite3")
			t.Setenv("JWT_SECRET", "secret")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.EqualError(t, err, tc.want)
		})
	}
}
