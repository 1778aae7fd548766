// Package warp is a small example plugin: named warps that players can set,
// list, use and delete.
package warp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docker/go-units"
	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/host"
	"github.com/steviee/mccmd/internal/manifest"
)

// Label is the plugin label the warp commands register under.
const Label = "warps"

// Permission nodes.
const (
	PermissionSet    = "warp.set"
	PermissionDelete = "warp.delete"
)

// Handler names for manifests.
const (
	HandlerUse    = "warp.use"
	HandlerList   = "warp.list"
	HandlerSet    = "warp.set"
	HandlerDelete = "warp.delete"
)

// Plugin holds the warp store and exposes its commands.
type Plugin struct {
	store *Store
}

// New creates the plugin around store.
func New(store *Store) *Plugin {
	return &Plugin{store: store}
}

// Store returns the plugin's store.
func (p *Plugin) Store() *Store {
	return p.store
}

// Definitions returns the warp command tree: "warp <name>", "warp list",
// "warp set <name>" and "warp delete|del <name>".
func (p *Plugin) Definitions() ([]command.Definition, error) {
	return []command.Definition{
		&command.Func{
			Desc: command.Descriptor{
				Name:        "warp",
				Description: "Teleport to a warp",
				Aliases:     []string{"w"},
				Usage:       "/warp <name|list|set|delete>",
			},
			Run: p.use,
		},
		&command.Func{
			Desc: command.Descriptor{
				Name:        "list",
				Description: "List all warps",
				Parent:      "warp",
			},
			Run: p.list,
		},
		&command.Func{
			Desc: command.Descriptor{
				Name:        "set",
				Description: "Create a warp where you stand",
				Permission:  PermissionSet,
				Parent:      "warp",
				Usage:       "/warp set <name>",
			},
			Run:        p.set,
			Executable: command.SenderIs[*host.Player](),
		},
		&command.Func{
			Desc: command.Descriptor{
				Name:             "delete",
				Description:      "Delete a warp",
				Aliases:          []string{"del"},
				AliasCompletions: true,
				Permission:       PermissionDelete,
				Parent:           "warp",
				Usage:            "/warp delete <name>",
			},
			Run: p.delete,
		},
	}, nil
}

// RegisterHandlers makes the warp handlers available to manifests.
func (p *Plugin) RegisterHandlers(registry *manifest.HandlerRegistry) error {
	handlers := map[string]manifest.Handler{
		HandlerUse:    p.use,
		HandlerList:   p.list,
		HandlerSet:    p.set,
		HandlerDelete: p.delete,
	}
	for _, name := range []string{HandlerUse, HandlerList, HandlerSet, HandlerDelete} {
		if err := registry.Register(name, handlers[name]); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plugin) use(sender command.Sender, args []string) error {
	if len(args) != 1 {
		return command.ErrUsage
	}

	w, err := p.store.Get(args[0])
	if errors.Is(err, ErrNotFound) {
		sender.SendMessage(fmt.Sprintf("&cNo warp named %s.", args[0]))
		return nil
	}
	if err != nil {
		return err
	}

	sender.SendMessage(fmt.Sprintf("&aWarped to %s.", w.Name))
	return nil
}

func (p *Plugin) list(sender command.Sender, _ []string) error {
	warps := p.store.List()
	if len(warps) == 0 {
		sender.SendMessage("&7No warps set.")
		return nil
	}

	entries := make([]string, 0, len(warps))
	for _, w := range warps {
		entries = append(entries, fmt.Sprintf("%s (set %s ago by %s)", w.Name, strings.ToLower(units.HumanDuration(p.store.Age(w))), w.Owner))
	}
	sender.SendMessage(fmt.Sprintf("&6Warps (%d): &f%s", len(warps), strings.Join(entries, ", ")))
	return nil
}

func (p *Plugin) set(sender command.Sender, args []string) error {
	if len(args) != 1 {
		return command.ErrUsage
	}

	w, err := p.store.Set(args[0], sender.Name())
	if errors.Is(err, ErrExists) {
		sender.SendMessage(fmt.Sprintf("&cWarp %s already exists.", args[0]))
		return nil
	}
	if err != nil {
		return err
	}

	sender.SendMessage(fmt.Sprintf("&aWarp %s set.", w.Name))
	return nil
}

func (p *Plugin) delete(sender command.Sender, args []string) error {
	if len(args) != 1 {
		return command.ErrUsage
	}

	err := p.store.Delete(args[0])
	if errors.Is(err, ErrNotFound) {
		sender.SendMessage(fmt.Sprintf("&cNo warp named %s.", args[0]))
		return nil
	}
	if err != nil {
		return err
	}

	sender.SendMessage(fmt.Sprintf("&aWarp %s deleted.", args[0]))
	return nil
}
