// Package docker provides Docker Engine API wrappers for the namegate
// bootstrap orchestrator.
//
// This package handles:
//   - Docker client initialization with automatic socket detection
//     (Linux, macOS, Windows)
//   - Idempotent provisioning of the cache (redis) container, matched
//     by exact container name
//   - Unconditional application image builds
//   - Foreground application container runs with credential passthrough
//     and exit code propagation
//
// Everything the orchestrator creates carries "namegate.*" labels so
// provisioned resources can be discovered and cleaned up later.
//
// The package uses github.com/docker/docker/client as the underlying
// Docker SDK, with version negotiation enabled for broad compatibility.
package docker
