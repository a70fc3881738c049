// provision.go implements the bootstrap provisioning sequence: ensure the
// cache container exists and runs (idempotently, matched by exact name),
// rebuild the application image unconditionally, and run the application
// container attached to the terminal with the credential passed through.
//
// Container creation for the cache goes through the Docker SDK because the
// orchestrator needs precise control over labels, networking, and port
// bindings. The image build and the attached application run go through
// the docker CLI via os/exec, because streaming build output and wiring an
// interactive TTY through the SDK would reimplement what the CLI already
// does well.
package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/go-connections/nat"

	"github.com/shivansh-labs/namegate/internal/model"
)

// CacheSpec describes the cache service container the orchestrator must
// ensure before the application starts.
type CacheSpec struct {
	// Name is the fixed container name used for the idempotence check.
	Name string

	// Image is the cache image reference, e.g. "redis:7-alpine".
	Image string

	// Port is the cache's TCP port, published host:container 1:1.
	Port int

	// Network is the user-defined bridge network joining cache and app.
	Network string

	// Alias is the network alias the application resolves the cache by.
	Alias string
}

// AppSpec describes the application container run.
type AppSpec struct {
	// Image is the application image tag built by BuildImage.
	Image string

	// Name is the application container name.
	Name string

	// HostPort is the local port mapped to ContainerPort.
	HostPort int

	// ContainerPort is the port the service listens on inside the
	// container.
	ContainerPort int

	// Network joins the container to the cache's bridge network.
	Network string

	// Env holds environment variables forwarded into the container.
	// Values may be empty strings; an unset credential is forwarded as
	// empty rather than omitted.
	Env map[string]string
}

// FindContainerByName returns the ID and state of the container with the
// given exact name, or ("", "", nil) when no such container exists.
// Stopped containers are matched too — the idempotence contract is about
// existence, not liveness.
func FindContainerByName(ctx context.Context, cli *Client, name string) (id, state string, err error) {
	// The name filter is a substring match on the daemon side, so the
	// results still need an exact comparison against the "/name" form
	// the API reports.
	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("name", name)),
	})
	if err != nil {
		return "", "", model.WrapCLIError(
			model.ExitRuntimeMissing,
			"failed to list Docker containers",
			err,
		)
	}

	for _, c := range containers {
		for _, n := range c.Names {
			if strings.TrimPrefix(n, "/") == name {
				return c.ID, c.State, nil
			}
		}
	}
	return "", "", nil
}

// EnsureNetwork creates the named bridge network if it does not exist.
// An existing network is reused as-is regardless of who created it.
func EnsureNetwork(ctx context.Context, cli *Client, name string) error {
	if _, err := cli.Inner().NetworkInspect(ctx, name, network.InspectOptions{}); err == nil {
		return nil
	}

	_, err := cli.Inner().NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{LabelManagedBy: ManagedByValue},
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitRuntimeMissing,
			fmt.Sprintf("failed to create network %q", name),
			err,
		)
	}
	return nil
}

// EnsureCacheContainer idempotently brings the cache container up:
//
//   - a running container with the exact name is left alone
//   - an existing stopped container is started, never recreated
//   - a missing container is pulled, created on the bridge network with
//     the cache alias, and started
//
// A second cache container is never created when one with the name
// already exists, whatever its state.
func EnsureCacheContainer(ctx context.Context, cli *Client, spec CacheSpec) error {
	id, state, err := FindContainerByName(ctx, cli, spec.Name)
	if err != nil {
		return err
	}

	if id != "" {
		if state == "running" {
			return nil
		}
		return StartContainer(ctx, cli, id)
	}

	if err := EnsureNetwork(ctx, cli, spec.Network); err != nil {
		return err
	}

	if err := pullImage(ctx, cli, spec.Image); err != nil {
		return err
	}

	port := nat.Port(fmt.Sprintf("%d/tcp", spec.Port))
	resp, err := cli.Inner().ContainerCreate(ctx,
		&container.Config{
			Image:        spec.Image,
			Labels:       BuildLabels(RoleCache, time.Now()),
			ExposedPorts: nat.PortSet{port: struct{}{}},
		},
		&container.HostConfig{
			PortBindings: nat.PortMap{
				port: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: fmt.Sprintf("%d", spec.Port)}},
			},
			RestartPolicy: container.RestartPolicy{Name: container.RestartPolicyUnlessStopped},
		},
		&network.NetworkingConfig{
			EndpointsConfig: map[string]*network.EndpointSettings{
				spec.Network: {Aliases: []string{spec.Alias}},
			},
		},
		nil,
		spec.Name,
	)
	if err != nil {
		return model.WrapCLIError(
			model.ExitRuntimeMissing,
			fmt.Sprintf("failed to create cache container %q", spec.Name),
			err,
		)
	}

	return StartContainer(ctx, cli, resp.ID)
}

// WaitForCache blocks until the cache accepts TCP connections on the
// published local port, or the deadline passes. The application tolerates
// a missing cache by degrading to its in-memory fallback, so a timeout
// here is surfaced as an error but callers may choose to continue.
func WaitForCache(ctx context.Context, port int, timeout time.Duration) error {
	addr := net.JoinHostPort("127.0.0.1", fmt.Sprintf("%d", port))
	deadline := time.Now().Add(timeout)

	for {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err == nil {
			conn.Close()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("cache at %s not accepting connections after %s: %w", addr, timeout, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// pullImage pulls an image and drains the progress stream. The stream
// must be read to completion or the pull is silently aborted.
func pullImage(ctx context.Context, cli *Client, ref string) error {
	rc, err := cli.Inner().ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitRuntimeMissing,
			fmt.Sprintf("failed to pull image %q", ref),
			err,
		)
	}
	defer rc.Close()
	_, err = io.Copy(io.Discard, rc)
	return err
}

// StartContainer starts a stopped container by its ID using the SDK.
func StartContainer(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStart(ctx, containerID, container.StartOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitRuntimeMissing,
			fmt.Sprintf("failed to start container %q", containerID),
			err,
		)
	}
	return nil
}

// BuildImage rebuilds the application image unconditionally by running
// "docker build -t <tag> <contextDir>" with output streamed to the
// terminal. A build failure is fatal with no retry; the error carries the
// build tool's diagnostics.
func BuildImage(ctx context.Context, contextDir, tag string) error {
	cmd := exec.CommandContext(ctx, "docker", "build", "-t", tag, contextDir)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("docker build failed for %q", tag),
			err,
		)
	}
	return nil
}

// RunAppContainer runs the application container in the foreground,
// attached to the terminal, and returns the container's exit code once it
// stops. A pre-existing container with the same name is removed first so
// repeated bootstraps don't collide on the name.
//
// Env entries are always forwarded, including empty values: the bootstrap
// contract is that an absent credential reaches the application as an
// empty string, never as a missing variable.
func RunAppContainer(ctx context.Context, cli *Client, spec AppSpec) (int, error) {
	if id, _, err := FindContainerByName(ctx, cli, spec.Name); err == nil && id != "" {
		_ = cli.Inner().ContainerRemove(ctx, id, container.RemoveOptions{Force: true})
	}

	args := []string{
		"run", "--rm",
		"--name", spec.Name,
		"--network", spec.Network,
		"-p", fmt.Sprintf("%d:%d", spec.HostPort, spec.ContainerPort),
		"--label", LabelManagedBy + "=" + ManagedByValue,
		"--label", LabelRole + "=" + string(RoleApp),
	}
	for k, v := range spec.Env {
		args = append(args, "-e", k+"="+v)
	}
	args = append(args, spec.Image)

	cmd := exec.CommandContext(ctx, "docker", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}

	// The long-running container's exit code is the orchestrator's own
	// exit code, so distinguish "the container exited non-zero" from
	// "docker run itself could not start".
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 0, model.WrapCLIError(
		model.ExitRuntimeMissing,
		fmt.Sprintf("docker run failed for container %q", spec.Name),
		err,
	)
}
