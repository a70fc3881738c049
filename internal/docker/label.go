package docker

import (
	"fmt"
	"time"
)

// Label key constants define the Docker label keys stamped on every
// resource the bootstrap orchestrator creates. Labels are the only
// record of what namegate provisioned — there is no state file.
//
// All keys share the "namegate." prefix to namespace them away from
// labels set by other tools.
const (
	// LabelPrefix is the common prefix for all namegate labels.
	LabelPrefix = "namegate."

	// LabelManagedBy identifies resources managed by namegate.
	// Key: "namegate.managed-by", Value: always "namegate".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelRole distinguishes the cache container from the app container.
	// Key: "namegate.role", Value: "cache" or "app".
	LabelRole = LabelPrefix + "role"

	// LabelCreatedAt stores the RFC3339 timestamp of resource creation.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "namegate"

// Role identifies which part of the deployment a provisioned container
// plays.
type Role string

const (
	// RoleCache is the redis result-cache container.
	RoleCache Role = "cache"

	// RoleApp is the application container running the API.
	RoleApp Role = "app"
)

// IsValid checks whether the Role value is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleCache || r == RoleApp
}

// BuildLabels constructs the label map applied to a provisioned
// container. The created-at timestamp uses UTC so inspection output is
// consistent regardless of the host timezone.
func BuildLabels(role Role, now time.Time) map[string]string {
	return map[string]string{
		LabelManagedBy: ManagedByValue,
		LabelRole:      string(role),
		LabelCreatedAt: now.UTC().Format(time.RFC3339),
	}
}

// ParseRole extracts and validates the role label from a container's
// label map. Returns an error when the label is missing or carries an
// unknown value, which indicates the container was not created by this
// tool (or by an incompatible version of it).
func ParseRole(labels map[string]string) (Role, error) {
	if labels[LabelManagedBy] != ManagedByValue {
		return "", fmt.Errorf("container is not managed by namegate")
	}
	role := Role(labels[LabelRole])
	if !role.IsValid() {
		return "", fmt.Errorf("unknown role label %q", labels[LabelRole])
	}
	return role, nil
}
