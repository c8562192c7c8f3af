package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/platewise/internal/infrastructure/config"
)

func TestParseMigrationName(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		version     string
		description string
		direction   string
		ok          bool
	}{
		{"up", "000001_init.up.sql", "000001", "init", "up", true},
		{"down", "000002_add_index.down.sql", "000002", "add_index", "down", true},
		{"no_direction", "000003_init.sql", "", "", "", false},
		{"no_description", "000004.up.sql", "", "", "", false},
		{"not_sql", "README.md", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, description, direction, ok := parseMigrationName(tt.file)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.version, version)
			assert.Equal(t, tt.description, description)
			assert.Equal(t, tt.direction, direction)
		})
	}
}

func TestLoadMigrations_Ordered(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("SELECT 2;")},
		"m/000001_first.up.sql":    {Data: []byte("SELECT 1;")},
		"m/000001_first.down.sql":  {Data: []byte("SELECT -1;")},
		"m/000003_orphan.down.sql": {Data: []byte("SELECT -3;")},
		"m/notes.txt":              {Data: []byte("ignored")},
	}

	migrations, err := loadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "000001", migrations[0].Version)
	assert.Equal(t, "first", migrations[0].Description)
	assert.Equal(t, "SELECT -1;", migrations[0].DownSQL)
	assert.Equal(t, "000002", migrations[1].Version)
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, "000001", migrations[0].Version)
	assert.Contains(t, migrations[0].UpSQL, "meal_logs")
	assert.Contains(t, migrations[0].UpSQL, "user_profiles")
}

func TestNewPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: "5432", User: "u", Password: "p",
		Name: "platewise", SSLMode: "disable", Schema: "platewise",
	}

	poolConfig, err := newPoolConfig(cfg)
	require.NoError(t, err)

	assert.EqualValues(t, defaultMaxConns, poolConfig.MaxConns)
	assert.EqualValues(t, defaultMinConns, poolConfig.MinConns)
	assert.Equal(t, "platewise", poolConfig.ConnConfig.Database)
	assert.Equal(t, "platewise", poolConfig.ConnConfig.RuntimeParams["search_path"])
}
