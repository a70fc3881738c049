// bootstrap.go implements the "namegate bootstrap" command: the local
// deployment orchestrator.
//
// Orchestration steps:
//  1. Load the bootstrap manifest (bootstrap.yaml, all fields defaulted)
//  2. Connect to the container runtime; a missing runtime aborts before
//     any build work
//  3. Ensure the cache container exists and runs (idempotent, by name)
//  4. Wait for the cache to accept connections
//  5. Rebuild the application image unconditionally
//  6. Run the application container attached to the terminal, forwarding
//     the model API credential (empty when unset) and the cache URL
//  7. Exit with the application container's own exit code
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shivansh-labs/namegate/internal/docker"
	"github.com/shivansh-labs/namegate/internal/model"
)

// Manifest is the bootstrap configuration, read from bootstrap.yaml.
// Every field has a default; a missing file bootstraps the standard
// local stack.
type Manifest struct {
	Network string `yaml:"network"`

	Cache struct {
		Name  string `yaml:"name"`
		Image string `yaml:"image"`
		Port  int    `yaml:"port"`
		Alias string `yaml:"alias"`
	} `yaml:"cache"`

	App struct {
		Name          string `yaml:"name"`
		Image         string `yaml:"image"`
		HostPort      int    `yaml:"host_port"`
		ContainerPort int    `yaml:"container_port"`

		// Context is the docker build context directory.
		Context string `yaml:"context"`
	} `yaml:"app"`

	// CacheWaitSeconds bounds the post-start readiness wait.
	CacheWaitSeconds int `yaml:"cache_wait_seconds"`
}

func defaultManifest() Manifest {
	var m Manifest
	m.Network = "namegate-net"
	m.Cache.Name = "namegate-cache"
	m.Cache.Image = "redis:7-alpine"
	m.Cache.Port = 6379
	m.Cache.Alias = "cache"
	m.App.Name = "namegate-app"
	m.App.Image = "namegate:latest"
	m.App.HostPort = 8000
	m.App.ContainerPort = 8000
	m.App.Context = "."
	m.CacheWaitSeconds = 30
	return m
}

// loadManifest reads the manifest at path, layering it over the
// defaults. A missing file at the default path is not an error; an
// explicitly given path must exist.
func loadManifest(path string, explicit bool) (Manifest, error) {
	m := defaultManifest()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return m, nil
		}
		return m, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read bootstrap manifest %q", path), err)
	}

	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to parse bootstrap manifest %q", path), err)
	}
	return m, nil
}

// NewBootstrapCommand creates the "bootstrap" cobra command.
func NewBootstrapCommand() *cobra.Command {
	var manifestPath string
	var skipBuild bool

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Provision the cache container, build the image, and run the service",
		Long: `Bootstrap the local deployment:

  - ensures the Redis cache container exists and is running (an existing
    container is reused, never recreated)
  - waits until the cache accepts connections
  - rebuilds the application image
  - runs the application container in the foreground on the shared
    bridge network, forwarding OPENAI_API_KEY (empty when unset)

The command exits with the application container's exit code.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd.Context(), manifestPath, cmd.Flags().Changed("manifest"), skipBuild)
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest", "bootstrap.yaml", "Path to the bootstrap manifest")
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Run the existing image without rebuilding")
	return cmd
}

func runBootstrap(ctx context.Context, manifestPath string, explicit, skipBuild bool) error {
	m, err := loadManifest(manifestPath, explicit)
	if err != nil {
		return err
	}

	// Runtime check comes first: without a daemon there is nothing to
	// build or run, so fail before any expensive work. Bootstrap exits 1
	// for a missing runtime, whatever code the client layer assigns.
	cli, err := docker.NewClient()
	if err != nil {
		return asBootstrapRuntimeError(err)
	}
	defer cli.Close()

	if err := cli.Ping(ctx); err != nil {
		return asBootstrapRuntimeError(err)
	}

	VerboseLog("ensuring cache container %q (%s)", m.Cache.Name, m.Cache.Image)
	if err := docker.EnsureCacheContainer(ctx, cli, docker.CacheSpec{
		Name:    m.Cache.Name,
		Image:   m.Cache.Image,
		Port:    m.Cache.Port,
		Network: m.Network,
		Alias:   m.Cache.Alias,
	}); err != nil {
		return err
	}

	wait := time.Duration(m.CacheWaitSeconds) * time.Second
	VerboseLog("waiting up to %s for cache on port %d", wait, m.Cache.Port)
	if err := docker.WaitForCache(ctx, m.Cache.Port, wait); err != nil {
		// The application degrades to an in-memory cache, so a cache
		// that never comes up is reported but not fatal.
		fmt.Fprintf(os.Stderr, "Warning: %v (continuing; the service falls back to its in-memory cache)\n", err)
	}

	if skipBuild {
		VerboseLog("skipping image build, using %q as-is", m.App.Image)
	} else {
		VerboseLog("building image %q from %q", m.App.Image, m.App.Context)
		if err := docker.BuildImage(ctx, m.App.Context, m.App.Image); err != nil {
			return err
		}
	}

	// The credential is forwarded even when unset: the application
	// treats an empty key as "no model, use fallback suggestions", so
	// the variable must always reach it.
	env := map[string]string{
		"OPENAI_API_KEY": os.Getenv("OPENAI_API_KEY"),
		"REDIS_URL":      fmt.Sprintf("redis://%s:%d/0", m.Cache.Alias, m.Cache.Port),
	}

	code, err := docker.RunAppContainer(ctx, cli, docker.AppSpec{
		Image:         m.App.Image,
		Name:          m.App.Name,
		HostPort:      m.App.HostPort,
		ContainerPort: m.App.ContainerPort,
		Network:       m.Network,
		Env:           env,
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return model.NewCLIError(model.ExitCode(code),
			fmt.Sprintf("application container exited with code %d", code))
	}
	return nil
}

// asBootstrapRuntimeError downgrades a missing-runtime error to exit
// code 1 for this command only; other commands keep the distinct code.
func asBootstrapRuntimeError(err error) error {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) && cliErr.Code == model.ExitRuntimeMissing {
		return model.WrapCLIError(model.ExitGeneralError, cliErr.Message, cliErr.Err)
	}
	return err
}
