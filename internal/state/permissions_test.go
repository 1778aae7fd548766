package state

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const notchUUID = "b50ad385-829d-3141-a216-7e7d7539ba7f"

func writePermissions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), PermissionsFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewPermissionsState(t *testing.T) {
	st := NewPermissionsState()

	require.NotNil(t, st)
	assert.Contains(t, st.Groups, DefaultGroup)
	assert.Empty(t, st.Players)
	assert.False(t, st.UpdatedAt.IsZero())
}

func TestLoadPermissions_Missing(t *testing.T) {
	st, err := LoadPermissions(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{}, st.EffectivePermissions("Steve"))
}

func TestLoadPermissions_Corrupted(t *testing.T) {
	path := writePermissions(t, "this is not valid YAML: {[}]")

	_, err := LoadPermissions(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupted and backed up")

	_, err = os.Stat(path + ".corrupted")
	require.NoError(t, err)
}

func TestLoadPermissions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "unknown group",
			content: "players:\n  - name: Steve\n    groups: [admins]\n",
			wantErr: "unknown group",
		},
		{
			name:    "bad node",
			content: "groups:\n  mods: [\"warp..delete\"]\n",
			wantErr: "invalid permission node",
		},
		{
			name:    "duplicate player",
			content: "players:\n  - name: Steve\n  - name: steve\n",
			wantErr: "duplicate player",
		},
		{
			name:    "bad uuid",
			content: "players:\n  - name: Steve\n    uuid: nope\n",
			wantErr: "invalid UUID format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPermissions(context.Background(), writePermissions(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEffectivePermissions(t *testing.T) {
	path := writePermissions(t, `
groups:
  default: [warp, warp.list]
  mods: [warp.*, warp.list]
players:
  - name: Notch
    groups: [mods]
    permissions: [admin.reload]
  - name: Steve
`)

	st, err := LoadPermissions(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"warp", "warp.list", "warp.*", "admin.reload"}, st.EffectivePermissions("notch"))
	assert.Equal(t, []string{"warp", "warp.list"}, st.EffectivePermissions("Steve"))
	assert.Equal(t, []string{"warp", "warp.list"}, st.EffectivePermissions("Alex"))
}

func TestGrantAndRevokePermission(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), PermissionsFileName)

	require.NoError(t, GrantPermission(ctx, path, "Notch", notchUUID, "warp.delete"))
	require.NoError(t, GrantPermission(ctx, path, "notch", "", "warp.set"))

	err := GrantPermission(ctx, path, "Notch", "", "WARP.DELETE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already has")

	players, err := ListPlayers(ctx, path)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, "Notch", players[0].Name)
	assert.Equal(t, notchUUID, players[0].UUID)
	assert.Equal(t, []string{"warp.delete", "warp.set"}, players[0].Permissions)

	require.NoError(t, RevokePermission(ctx, path, "Notch", "warp.delete"))

	err = RevokePermission(ctx, path, "Notch", "warp.delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not have")

	err = RevokePermission(ctx, path, "Alex", "warp.delete")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no grants")

	st, err := LoadPermissions(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"warp.set"}, st.EffectivePermissions("Notch"))

	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err, "previous version should be kept")
}

func TestGrantPermission_Validation(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), PermissionsFileName)

	assert.Error(t, GrantPermission(ctx, path, "not a name", "", "warp"))
	assert.Error(t, GrantPermission(ctx, path, "Steve", "", "warp..set"))
	assert.Error(t, GrantPermission(ctx, path, "Steve", "nope", "warp"))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing should be written")
}

func TestGrantPermission_Concurrent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), PermissionsFileName)
	nodes := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup
	for _, node := range nodes {
		wg.Add(1)
		go func(node string) {
			defer wg.Done()
			assert.NoError(t, GrantPermission(ctx, path, "Steve", "", "warp."+node))
		}(node)
	}
	wg.Wait()

	st, err := LoadPermissions(ctx, path)
	require.NoError(t, err)
	player, ok := st.Player("steve")
	require.True(t, ok)
	assert.Len(t, player.Permissions, len(nodes))
}
