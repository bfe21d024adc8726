package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PlannerConfig(t *testing.T) {
	t.Setenv("PLANNER_GRAPHQL_URL", "http://otp.test/graphql")
	t.Setenv("PLANNER_TIMEOUT_SECONDS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://otp.test/graphql", cfg.Planner.GraphQLURL)
	assert.Equal(t, 3, cfg.Planner.TimeoutSeconds)
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("PLANNER_GRAPHQL_URL")
	os.Unsetenv("PLANNER_TIMEOUT_SECONDS")
	os.Unsetenv("STOP_AREAS_FILE")
	os.Unsetenv("SESSION_COOKIE_NAME")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://otp.somos.srl/otp/routers/default/index/graphql", cfg.Planner.GraphQLURL)
	assert.Equal(t, 10, cfg.Planner.TimeoutSeconds)
	assert.Equal(t, "Europe/Rome", cfg.Planner.Timezone)
	assert.Equal(t, "sessionid", cfg.Session.CookieName)
	assert.Equal(t, DefaultStopAreas(), cfg.StopAreas)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("PLANNER_TIMEOUT_SECONDS", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://app.somos.srl, https://admin.somos.srl,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://app.somos.srl", "https://admin.somos.srl"}, cfg.Server.AllowedOrigins)
}

func TestLoadStopAreas_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "areas.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
areas:
  - name: catanzaro
    min_lat: 38.88
    max_lat: 38.93
    min_lon: 16.57
    max_lon: 16.62
`), 0o600))

	areas, err := LoadStopAreas(path)
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "catanzaro", areas[0].Name)
	assert.True(t, areas[0].Contains(38.90, 16.60))
}

func TestParseStopAreas_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty list", "areas: []"},
		{"inverted latitude", "areas:\n  - {name: x, min_lat: 39.5, max_lat: 39.1, min_lon: 16.0, max_lon: 16.2}"},
		{"latitude out of range", "areas:\n  - {name: x, min_lat: 95, max_lat: 96, min_lon: 16.0, max_lon: 16.2}"},
		{"not yaml", "areas: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStopAreas([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_DatabasePool(t *testing.T) {
	t.Setenv("DB_MAX_OPEN_CONNS", "40")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90s")
	t.Setenv("DB_MAX_IDLE_CONNS", "lots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 40, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 90*time.Second, cfg.Database.ConnMaxLifetime)
}
