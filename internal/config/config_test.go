package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regsweep/regsweep/internal/testutils"
)

const validConfig = `
[registry]
url = "https://registry.example.com/artifactory"
username = "admin"
password = "secret"
images = ["docker-local/myapp", "docker-local/worker"]

[cleanup]
days_old = 14
keep_minimum = 5
dry_run = false

[[image_policy]]
image = "myapp"
days_old = 7

[logging]
level = "debug"
`

func TestLoad_ValidConfig(t *testing.T) {
	testutils.LoadTempConfig(t, validConfig)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://registry.example.com/artifactory", cfg.Registry.URL)
	assert.Equal(t, "admin", cfg.Registry.Username)
	assert.Equal(t, []string{"docker-local/myapp", "docker-local/worker"}, cfg.Registry.Images)

	assert.Equal(t, 14, cfg.Cleanup.DaysOld)
	assert.Equal(t, 5, cfg.Cleanup.KeepMinimum)
	assert.False(t, cfg.Cleanup.DryRun)

	require.Len(t, cfg.ImagePolicies, 1)
	assert.Equal(t, "myapp", cfg.ImagePolicies[0].Image)
	require.NotNil(t, cfg.ImagePolicies[0].DaysOld)
	assert.Equal(t, 7, *cfg.ImagePolicies[0].DaysOld)
	assert.Nil(t, cfg.ImagePolicies[0].KeepMinimum, "unset override field must stay nil")

	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Defaults(t *testing.T) {
	testutils.LoadTempConfig(t, `
[registry]
url = "https://registry.example.com/artifactory"
username = "admin"
password = "secret"
images = ["docker-local/myapp"]
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Cleanup.DaysOld)
	assert.Equal(t, 3, cfg.Cleanup.KeepMinimum)
	assert.True(t, cfg.Cleanup.DryRun, "dry_run must default to true")
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_ExpandsCredentialEnvVars(t *testing.T) {
	t.Setenv("REGSWEEP_TEST_USER", "svc-cleaner")
	t.Setenv("REGSWEEP_TEST_PASSWORD", "hunter2")

	testutils.LoadTempConfig(t, `
[registry]
url = "https://registry.example.com/artifactory"
username = "${REGSWEEP_TEST_USER}"
password = "${REGSWEEP_TEST_PASSWORD}"
images = ["docker-local/myapp"]
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "svc-cleaner", cfg.Registry.Username)
	assert.Equal(t, "hunter2", cfg.Registry.Password)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		config string
		field  string
	}{
		{
			name: "missing url",
			config: `
[registry]
username = "admin"
password = "secret"
images = ["docker-local/myapp"]
`,
			field: "registry.url",
		},
		{
			name: "missing credentials",
			config: `
[registry]
url = "https://registry.example.com/artifactory"
images = ["docker-local/myapp"]
`,
			field: "registry.username",
		},
		{
			name: "no images or repositories",
			config: `
[registry]
url = "https://registry.example.com/artifactory"
username = "admin"
password = "secret"
`,
			field: "registry.images",
		},
		{
			name: "malformed image spec",
			config: `
[registry]
url = "https://registry.example.com/artifactory"
username = "admin"
password = "secret"
images = ["no-repository-part"]
`,
			field: "registry.images",
		},
		{
			name: "negative days_old",
			config: `
[registry]
url = "https://registry.example.com/artifactory"
username = "admin"
password = "secret"
images = ["docker-local/myapp"]

[cleanup]
days_old = -1
`,
			field: "cleanup.days_old",
		},
		{
			name: "negative override keep_minimum",
			config: `
[registry]
url = "https://registry.example.com/artifactory"
username = "admin"
password = "secret"
images = ["docker-local/myapp"]

[[image_policy]]
image = "myapp"
keep_minimum = -2
`,
			field: "image_policy.keep_minimum",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutils.LoadTempConfig(t, tt.config)

			_, err := Load()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoad_RepositoriesOnlyIsValid(t *testing.T) {
	testutils.LoadTempConfig(t, `
[registry]
url = "https://registry.example.com/artifactory"
username = "admin"
password = "secret"
repositories = ["docker-local"]
`)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"docker-local"}, cfg.Registry.Repositories)
}

func TestConfig_Overrides(t *testing.T) {
	testutils.LoadTempConfig(t, validConfig)

	cfg, err := Load()
	require.NoError(t, err)

	overrides := cfg.Overrides()
	require.Len(t, overrides, 1)
	assert.Equal(t, "myapp", overrides[0].Image)
	require.NotNil(t, overrides[0].DaysOld)
	assert.Equal(t, 7, *overrides[0].DaysOld)
	assert.Nil(t, overrides[0].KeepMinimum)
}
