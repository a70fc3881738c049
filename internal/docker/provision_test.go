package docker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDaemon serves just enough of the Engine API for the provisioning
// tests: version ping, container list, container start, and a create
// endpoint that records whether it was ever hit.
type fakeDaemon struct {
	containers []map[string]any
	started    []string
	created    int
}

func (d *fakeDaemon) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/_ping"):
			w.Header().Set("API-Version", "1.44")
			w.WriteHeader(http.StatusOK)

		case strings.HasSuffix(r.URL.Path, "/containers/json"):
			_ = json.NewEncoder(w).Encode(d.containers)

		case strings.HasSuffix(r.URL.Path, "/start"):
			parts := strings.Split(r.URL.Path, "/")
			d.started = append(d.started, parts[len(parts)-2])
			w.WriteHeader(http.StatusNoContent)

		case strings.HasSuffix(r.URL.Path, "/containers/create"):
			d.created++
			_ = json.NewEncoder(w).Encode(map[string]any{"Id": "fresh"})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newFakeClient(t *testing.T, d *fakeDaemon) *Client {
	t.Helper()
	srv := httptest.NewServer(d.handler())
	t.Cleanup(srv.Close)

	cli, err := newClientWithHost("tcp://" + strings.TrimPrefix(srv.URL, "http://"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cli.Close() })
	return cli
}

// TestEnsureCacheContainerReusesRunningContainer verifies an existing
// running container with the exact name is left alone: no second
// container is created and no start is issued.
func TestEnsureCacheContainerReusesRunningContainer(t *testing.T) {
	// Arrange
	daemon := &fakeDaemon{containers: []map[string]any{
		{"Id": "c1", "Names": []string{"/namegate-cache"}, "State": "running"},
	}}
	cli := newFakeClient(t, daemon)

	// Act
	err := EnsureCacheContainer(context.Background(), cli, CacheSpec{
		Name: "namegate-cache", Image: "redis:7-alpine", Port: 6379,
		Network: "namegate-net", Alias: "cache",
	})

	// Assert
	require.NoError(t, err)
	assert.Zero(t, daemon.created, "a second cache container must never be created")
	assert.Empty(t, daemon.started)
}

// TestEnsureCacheContainerStartsStoppedContainer verifies a stopped
// container with the name is started rather than recreated.
func TestEnsureCacheContainerStartsStoppedContainer(t *testing.T) {
	daemon := &fakeDaemon{containers: []map[string]any{
		{"Id": "c1", "Names": []string{"/namegate-cache"}, "State": "exited"},
	}}
	cli := newFakeClient(t, daemon)

	err := EnsureCacheContainer(context.Background(), cli, CacheSpec{
		Name: "namegate-cache", Image: "redis:7-alpine", Port: 6379,
		Network: "namegate-net", Alias: "cache",
	})

	require.NoError(t, err)
	assert.Zero(t, daemon.created)
	assert.Equal(t, []string{"c1"}, daemon.started)
}

// TestFindContainerByNameRequiresExactMatch verifies the daemon's
// substring name filter is narrowed to an exact match, so a container
// whose name merely contains the wanted one is not mistaken for it.
func TestFindContainerByNameRequiresExactMatch(t *testing.T) {
	daemon := &fakeDaemon{containers: []map[string]any{
		{"Id": "c9", "Names": []string{"/namegate-cache-backup"}, "State": "running"},
	}}
	cli := newFakeClient(t, daemon)

	id, state, err := FindContainerByName(context.Background(), cli, "namegate-cache")

	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Empty(t, state)
}
