package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildLabels verifies that BuildLabels stamps the managed-by marker,
// the role, and a UTC RFC3339 timestamp.
func TestBuildLabels(t *testing.T) {
	// Arrange: a fixed, non-UTC creation time.
	loc := time.FixedZone("IST", 5*3600+1800)
	created := time.Date(2026, 3, 14, 15, 30, 0, 0, loc)

	// Act
	labels := BuildLabels(RoleCache, created)

	// Assert
	assert.Equal(t, ManagedByValue, labels[LabelManagedBy])
	assert.Equal(t, "cache", labels[LabelRole])
	assert.Equal(t, "2026-03-14T10:00:00Z", labels[LabelCreatedAt],
		"timestamp should be normalized to UTC")
	assert.Len(t, labels, 3)
}

// TestParseRole verifies the round trip and the rejection of foreign
// containers.
func TestParseRole(t *testing.T) {
	labels := BuildLabels(RoleApp, time.Now())

	role, err := ParseRole(labels)
	require.NoError(t, err)
	assert.Equal(t, RoleApp, role)
}

func TestParseRole_NotManaged(t *testing.T) {
	_, err := ParseRole(map[string]string{
		"com.docker.compose.service": "redis",
	})
	assert.Error(t, err, "containers created by other tools must be rejected")
}

func TestParseRole_UnknownRole(t *testing.T) {
	_, err := ParseRole(map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelRole:      "sidecar",
	})
	assert.Error(t, err)
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleCache.IsValid())
	assert.True(t, RoleApp.IsValid())
	assert.False(t, Role("").IsValid())
	assert.False(t, Role("proxy").IsValid())
}
