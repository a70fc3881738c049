package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivansh-labs/namegate/internal/model"
)

func TestLoadManifestDefaultsWhenFileMissing(t *testing.T) {
	m, err := loadManifest(filepath.Join(t.TempDir(), "bootstrap.yaml"), false)

	require.NoError(t, err)
	assert.Equal(t, "namegate-net", m.Network)
	assert.Equal(t, "namegate-cache", m.Cache.Name)
	assert.Equal(t, "redis:7-alpine", m.Cache.Image)
	assert.Equal(t, 6379, m.Cache.Port)
	assert.Equal(t, "namegate:latest", m.App.Image)
	assert.Equal(t, 8000, m.App.HostPort)
	assert.Equal(t, ".", m.App.Context)
}

func TestLoadManifestExplicitPathMustExist(t *testing.T) {
	_, err := loadManifest(filepath.Join(t.TempDir(), "nope.yaml"), true)

	require.Error(t, err)
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}

func TestLoadManifestOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	manifest := `
network: custom-net
cache:
  name: my-cache
  port: 6380
app:
  host_port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o644))

	m, err := loadManifest(path, true)

	require.NoError(t, err)
	assert.Equal(t, "custom-net", m.Network)
	assert.Equal(t, "my-cache", m.Cache.Name)
	assert.Equal(t, 6380, m.Cache.Port)
	assert.Equal(t, 9000, m.App.HostPort)
	// Untouched fields keep their defaults.
	assert.Equal(t, "redis:7-alpine", m.Cache.Image)
	assert.Equal(t, 8000, m.App.ContainerPort)
}

// TestAsBootstrapRuntimeErrorDowngradesRuntimeMissing verifies bootstrap
// exits 1 when the container runtime is absent, while other failure
// codes pass through untouched.
func TestAsBootstrapRuntimeErrorDowngradesRuntimeMissing(t *testing.T) {
	in := model.WrapCLIError(model.ExitRuntimeMissing,
		"Docker socket not found", errors.New("no such file"))

	out := asBootstrapRuntimeError(in)

	var cliErr *model.CLIError
	require.ErrorAs(t, out, &cliErr)
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	assert.Equal(t, "Docker socket not found", cliErr.Message)
}

func TestAsBootstrapRuntimeErrorKeepsOtherCodes(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want model.ExitCode
	}{
		{"config error", model.NewCLIError(model.ExitConfigError, "bad manifest"), model.ExitConfigError},
		{"general error", model.NewCLIError(model.ExitGeneralError, "build failed"), model.ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := asBootstrapRuntimeError(tt.in)

			var cliErr *model.CLIError
			require.ErrorAs(t, out, &cliErr)
			assert.Equal(t, tt.want, cliErr.Code)
		})
	}
}

func TestAsBootstrapRuntimeErrorPassesPlainErrors(t *testing.T) {
	in := errors.New("something else")
	assert.Equal(t, in, asBootstrapRuntimeError(in))
}

func TestLoadManifestRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: [not a map"), 0o644))

	_, err := loadManifest(path, false)

	require.Error(t, err)
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
}
