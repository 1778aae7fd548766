package state

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// labelRegex validates plugin labels (lower-case alphanumeric, hyphen, underscore)
	labelRegex = regexp.MustCompile(`^[a-z0-9_-]+$`)

	// groupNameRegex validates permission group names
	groupNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

	// permissionNodeRegex validates dotted permission nodes with an optional trailing wildcard
	permissionNodeRegex = regexp.MustCompile(`^(\*|[a-zA-Z0-9_-]+(\.[a-zA-Z0-9_-]+)*(\.\*)?)$`)

	// uuidRegex validates UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ValidateLabel validates a plugin label.
// Labels prefix command names ("label:name") and must be lower case.
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("label cannot be empty")
	}

	if len(label) > 32 {
		return fmt.Errorf("label must be 32 characters or less, got %d", len(label))
	}

	if !labelRegex.MatchString(label) {
		return fmt.Errorf("label must contain only lower-case letters, digits, '-' and '_': %q", label)
	}

	return nil
}

// ValidateGroupName validates a permission group name.
func ValidateGroupName(name string) error {
	if name == "" {
		return fmt.Errorf("group name cannot be empty")
	}

	if len(name) > 63 {
		return fmt.Errorf("group name must be 63 characters or less, got %d", len(name))
	}

	if !groupNameRegex.MatchString(name) {
		return fmt.Errorf("group name must start with an alphanumeric character and contain only alphanumerics, '-' and '_': %q", name)
	}

	return nil
}

// ValidatePermissionNode validates a permission node such as "warp.delete",
// "warp.*" or "*".
func ValidatePermissionNode(node string) error {
	if node == "" {
		return fmt.Errorf("permission node cannot be empty")
	}

	if !permissionNodeRegex.MatchString(node) {
		return fmt.Errorf("invalid permission node: %q", node)
	}

	return nil
}

// ValidateUUID validates a UUID string.
func ValidateUUID(uuid string) error {
	if uuid == "" {
		return fmt.Errorf("UUID cannot be empty")
	}

	uuid = strings.ToLower(uuid)
	if !uuidRegex.MatchString(uuid) {
		return fmt.Errorf("invalid UUID format: %q", uuid)
	}

	return nil
}

// ValidatePort validates a port number.
// Valid range: 1-65535
func ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidatePlayerName validates a Minecraft player name.
// Rules:
// - Must be 1-16 characters long
// - Must contain only alphanumeric characters and underscores
func ValidatePlayerName(name string) error {
	if name == "" {
		return fmt.Errorf("player name cannot be empty")
	}

	if len(name) > 16 {
		return fmt.Errorf("player name must be 16 characters or less, got %d", len(name))
	}

	for _, ch := range name {
		isAlpha := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		isDigit := ch >= '0' && ch <= '9'
		isUnderscore := ch == '_'

		if !isAlpha && !isDigit && !isUnderscore {
			return fmt.Errorf("player name must contain only alphanumeric characters and underscores: %q", name)
		}
	}

	return nil
}

// ValidatePath validates a file path.
// This is a basic check to prevent directory traversal attacks.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if strings.Contains(path, "..") {
		return fmt.Errorf("path cannot contain '..': %q", path)
	}

	return nil
}
