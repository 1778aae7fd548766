package host

import (
	"crypto/md5"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ConsoleName is the name the console sender reports.
const ConsoleName = "CONSOLE"

// Console is the server console. It holds every permission.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole creates a console sender writing messages to out, which may be nil.
func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

// Name returns ConsoleName.
func (c *Console) Name() string {
	return ConsoleName
}

// SendMessage writes the message on its own line.
func (c *Console) SendMessage(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.out != nil {
		_, _ = fmt.Fprintln(c.out, message)
	}
}

// HasPermission always returns true.
func (c *Console) HasPermission(string) bool {
	return true
}

// Player is an online player with a set of granted permission nodes.
type Player struct {
	id          uuid.UUID
	name        string
	permissions []string

	mu       sync.Mutex
	out      io.Writer
	messages []string
}

// NewPlayer creates a player with the offline-mode UUID for name. out may be
// nil; messages are always kept in memory.
func NewPlayer(name string, permissions []string, out io.Writer) *Player {
	return &Player{
		id:          OfflineUUID(name),
		name:        name,
		permissions: append([]string(nil), permissions...),
		out:         out,
	}
}

// OfflineUUID returns the version 3 UUID servers in offline mode derive from
// "OfflinePlayer:<name>".
func OfflineUUID(name string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + name))
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	id, _ := uuid.FromBytes(sum[:])
	return id
}

// ID returns the player's UUID.
func (p *Player) ID() uuid.UUID {
	return p.id
}

// Name returns the player name.
func (p *Player) Name() string {
	return p.name
}

// SendMessage records the message and forwards it to the output, if any.
func (p *Player) SendMessage(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	if p.out != nil {
		_, _ = fmt.Fprintf(p.out, "[%s] %s\n", p.name, message)
	}
}

// Messages returns every message received so far.
func (p *Player) Messages() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.messages...)
}

// HasPermission reports whether any granted node covers permission.
func (p *Player) HasPermission(permission string) bool {
	for _, granted := range p.permissions {
		if PermissionMatches(granted, permission) {
			return true
		}
	}
	return false
}

// PermissionMatches reports whether the granted node covers wanted.
// "*" covers everything and "warp.*" covers "warp" and every node below it.
// Matching ignores case.
func PermissionMatches(granted, wanted string) bool {
	granted = strings.ToLower(strings.TrimSpace(granted))
	wanted = strings.ToLower(strings.TrimSpace(wanted))

	switch {
	case granted == "":
		return false
	case granted == "*":
		return true
	case granted == wanted:
		return true
	case strings.HasSuffix(granted, ".*"):
		base := strings.TrimSuffix(granted, ".*")
		return wanted == base || strings.HasPrefix(wanted, base+".")
	}
	return false
}
