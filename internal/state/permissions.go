package state

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultGroup is applied to every player, listed or not.
const DefaultGroup = "default"

// PermissionsState is the host's permission file: named groups of nodes and
// per-player grants.
type PermissionsState struct {
	UpdatedAt time.Time           `yaml:"updated_at"`
	Groups    map[string][]string `yaml:"groups"`
	Players   []PlayerGrant       `yaml:"players"`
}

// PlayerGrant lists the groups and nodes granted to one player.
type PlayerGrant struct {
	Name        string   `yaml:"name" json:"name"`
	UUID        string   `yaml:"uuid,omitempty" json:"uuid,omitempty"`
	Groups      []string `yaml:"groups,omitempty" json:"groups,omitempty"`
	Permissions []string `yaml:"permissions,omitempty" json:"permissions,omitempty"`
}

// NewPermissionsState creates an empty permissions state with the default group.
func NewPermissionsState() *PermissionsState {
	return &PermissionsState{
		UpdatedAt: time.Now(),
		Groups:    map[string][]string{DefaultGroup: {}},
		Players:   []PlayerGrant{},
	}
}

// LoadPermissions loads the permissions file at path. A missing file yields
// an empty state. A corrupted file is backed up and an error is returned.
func LoadPermissions(ctx context.Context, path string) (*PermissionsState, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewPermissionsState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions file: %w", err)
	}

	var st PermissionsState
	if err := yaml.Unmarshal(data, &st); err != nil {
		backupPath := path + ".corrupted"
		if backupErr := os.Rename(path, backupPath); backupErr != nil {
			return nil, fmt.Errorf("permissions file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}
		return nil, fmt.Errorf("permissions file was corrupted and backed up to %s: %w", backupPath, err)
	}

	if st.Groups == nil {
		st.Groups = map[string][]string{}
	}
	if _, ok := st.Groups[DefaultGroup]; !ok {
		st.Groups[DefaultGroup] = []string{}
	}

	if err := ValidatePermissionsState(&st); err != nil {
		return nil, fmt.Errorf("invalid permissions file: %w", err)
	}

	return &st, nil
}

// SavePermissions writes st to path atomically, keeping the previous
// version as path.bak.
func SavePermissions(ctx context.Context, path string, st *PermissionsState) error {
	if st == nil {
		return fmt.Errorf("state cannot be nil")
	}

	if err := ValidatePermissionsState(st); err != nil {
		return fmt.Errorf("invalid permissions state: %w", err)
	}

	st.UpdatedAt = time.Now()

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}

	if err := AtomicWriteWithBackup(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write permissions: %w", err)
	}

	return nil
}

// ValidatePermissionsState validates group names, permission nodes, player
// names and group references.
func ValidatePermissionsState(st *PermissionsState) error {
	if st == nil {
		return fmt.Errorf("state cannot be nil")
	}

	for group, nodes := range st.Groups {
		if err := ValidateGroupName(group); err != nil {
			return fmt.Errorf("invalid group: %w", err)
		}
		for _, node := range nodes {
			if err := ValidatePermissionNode(node); err != nil {
				return fmt.Errorf("group %q: %w", group, err)
			}
		}
	}

	seen := make(map[string]bool)
	for _, player := range st.Players {
		if err := ValidatePlayerName(player.Name); err != nil {
			return fmt.Errorf("invalid player name: %w", err)
		}
		if player.UUID != "" {
			if err := ValidateUUID(player.UUID); err != nil {
				return fmt.Errorf("player %q: %w", player.Name, err)
			}
		}

		key := strings.ToLower(player.Name)
		if seen[key] {
			return fmt.Errorf("duplicate player: %s", player.Name)
		}
		seen[key] = true

		for _, group := range player.Groups {
			if _, ok := st.Groups[group]; !ok {
				return fmt.Errorf("player %q: unknown group %q", player.Name, group)
			}
		}
		for _, node := range player.Permissions {
			if err := ValidatePermissionNode(node); err != nil {
				return fmt.Errorf("player %q: %w", player.Name, err)
			}
		}
	}

	return nil
}

// Player returns the grant entry for name, ignoring case.
func (st *PermissionsState) Player(name string) (*PlayerGrant, bool) {
	for i := range st.Players {
		if strings.EqualFold(st.Players[i].Name, name) {
			return &st.Players[i], true
		}
	}
	return nil, false
}

// EffectivePermissions returns every node granted to name: the default
// group, the player's groups, then the player's own nodes, without duplicates.
func (st *PermissionsState) EffectivePermissions(name string) []string {
	nodes := []string{}
	seen := make(map[string]bool)
	add := func(list []string) {
		for _, node := range list {
			if !seen[node] {
				seen[node] = true
				nodes = append(nodes, node)
			}
		}
	}

	add(st.Groups[DefaultGroup])
	if player, ok := st.Player(name); ok {
		for _, group := range player.Groups {
			add(st.Groups[group])
		}
		add(player.Permissions)
	}
	return nodes
}

// GrantPermission adds node to the player's grants in the file at path,
// creating the player entry when needed. uuid may be empty.
func GrantPermission(ctx context.Context, path, name, uuid, node string) error {
	if err := ValidatePlayerName(name); err != nil {
		return err
	}
	if err := ValidatePermissionNode(node); err != nil {
		return err
	}

	return WithFileLock(path, func() error {
		st, err := LoadPermissions(ctx, path)
		if err != nil {
			return err
		}

		player, ok := st.Player(name)
		if !ok {
			st.Players = append(st.Players, PlayerGrant{Name: name, UUID: uuid})
			player = &st.Players[len(st.Players)-1]
		}
		for _, granted := range player.Permissions {
			if strings.EqualFold(granted, node) {
				return fmt.Errorf("player %q already has %q", player.Name, node)
			}
		}
		player.Permissions = append(player.Permissions, node)

		return SavePermissions(ctx, path, st)
	})
}

// RevokePermission removes node from the player's grants in the file at path.
func RevokePermission(ctx context.Context, path, name, node string) error {
	return WithFileLock(path, func() error {
		st, err := LoadPermissions(ctx, path)
		if err != nil {
			return err
		}

		player, ok := st.Player(name)
		if !ok {
			return fmt.Errorf("player %q has no grants", name)
		}

		kept := make([]string, 0, len(player.Permissions))
		for _, granted := range player.Permissions {
			if !strings.EqualFold(granted, node) {
				kept = append(kept, granted)
			}
		}
		if len(kept) == len(player.Permissions) {
			return fmt.Errorf("player %q does not have %q", player.Name, node)
		}
		player.Permissions = kept

		return SavePermissions(ctx, path, st)
	})
}

// ListPlayers returns a copy of the player grants sorted by name.
func ListPlayers(ctx context.Context, path string) ([]PlayerGrant, error) {
	st, err := LoadPermissions(ctx, path)
	if err != nil {
		return nil, err
	}

	players := make([]PlayerGrant, len(st.Players))
	copy(players, st.Players)
	sort.Slice(players, func(i, j int) bool {
		return strings.ToLower(players[i].Name) < strings.ToLower(players[j].Name)
	})
	return players, nil
}
