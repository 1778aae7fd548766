package host

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/steviee/mccmd/internal/command"
)

// UnknownCommandMessage is sent when a command line names no known command.
const UnknownCommandMessage = "Unknown command. Type \"/help\" for help."

// ErrCommandExists is returned when label:name is already registered.
var ErrCommandExists = errors.New("command already registered")

// CommandMap is the host's dispatch table. Every command is reachable as
// label:name; the plain name and the aliases are added when still free.
type CommandMap struct {
	mu     sync.RWMutex
	known  map[string]command.Dispatchable
	owners map[string][]command.Dispatchable
	keys   map[string][]string
}

// NewCommandMap creates an empty command map.
func NewCommandMap() *CommandMap {
	return &CommandMap{
		known:  make(map[string]command.Dispatchable),
		owners: make(map[string][]command.Dispatchable),
		keys:   make(map[string][]string),
	}
}

// Register adds cmd under the plugin label.
func (m *CommandMap) Register(label string, cmd command.Dispatchable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.register(strings.ToLower(label), cmd)
}

func (m *CommandMap) register(label string, cmd command.Dispatchable) error {
	name := strings.ToLower(cmd.Name())
	prefixed := label + ":" + name
	if _, exists := m.known[prefixed]; exists {
		return fmt.Errorf("%w: %s", ErrCommandExists, prefixed)
	}

	keys := []string{prefixed}
	m.known[prefixed] = cmd
	for _, key := range append([]string{name}, cmd.Aliases()...) {
		key = strings.ToLower(key)
		if _, taken := m.known[key]; taken {
			continue
		}
		m.known[key] = cmd
		keys = append(keys, key)
	}

	m.owners[label] = append(m.owners[label], cmd)
	m.keys[label] = append(m.keys[label], keys...)
	return nil
}

// Unregister removes every command registered under label.
func (m *CommandMap) Unregister(label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregister(strings.ToLower(label))
}

func (m *CommandMap) unregister(label string) {
	for _, key := range m.keys[label] {
		delete(m.known, key)
	}
	delete(m.keys, label)
	delete(m.owners, label)
}

// ReplaceLabel swaps the commands of label for the ones staged registered
// under the same label, in one step. Dispatch never sees a half-built set.
func (m *CommandMap) ReplaceLabel(label string, staged *CommandMap) []error {
	label = strings.ToLower(label)

	staged.mu.RLock()
	cmds := append([]command.Dispatchable(nil), staged.owners[label]...)
	staged.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.unregister(label)

	var errs []error
	for _, cmd := range cmds {
		if err := m.register(label, cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Lookup returns the command registered under key, ignoring case.
func (m *CommandMap) Lookup(key string) (command.Dispatchable, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cmd, ok := m.known[strings.ToLower(key)]
	return cmd, ok
}

// Commands returns every registered command once, sorted by name.
func (m *CommandMap) Commands() []command.Dispatchable {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cmds []command.Dispatchable
	for _, owned := range m.owners {
		cmds = append(cmds, owned...)
	}
	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i].Name() < cmds[j].Name()
	})
	return cmds
}

// Labels returns the plugin labels with registered commands, sorted.
func (m *CommandMap) Labels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	labels := make([]string, 0, len(m.owners))
	for label := range m.owners {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Dispatch runs a command line such as "/warp delete spawn". It returns false
// when the line is empty or names no known command.
func (m *CommandMap) Dispatch(sender command.Sender, line string) bool {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), "/"))
	if len(fields) == 0 {
		return false
	}

	cmd, ok := m.Lookup(fields[0])
	if !ok {
		sender.SendMessage(UnknownCommandMessage)
		return false
	}
	return cmd.Execute(sender, fields[0], fields[1:])
}

// Complete returns suggestions for a partial command line. The first word is
// completed against the registered keys; later words come from the command's
// candidate pool narrowed by prefix.
func (m *CommandMap) Complete(sender command.Sender, line string) []string {
	line = strings.TrimLeft(line, " ")
	line = strings.TrimPrefix(line, "/")
	parts := strings.Split(line, " ")

	if len(parts) == 1 {
		return m.completeLabels(sender, parts[0])
	}

	cmd, ok := m.Lookup(parts[0])
	if !ok {
		return []string{}
	}
	args := parts[1:]
	return filterPrefix(cmd.TabComplete(sender, parts[0], args), args[len(args)-1])
}

func (m *CommandMap) completeLabels(sender command.Sender, partial string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	partial = strings.ToLower(partial)
	withPrefix := strings.Contains(partial, ":")

	matches := []string{}
	for key, cmd := range m.known {
		if strings.Contains(key, ":") != withPrefix {
			continue
		}
		if !strings.HasPrefix(key, partial) {
			continue
		}
		if perm := cmd.Permission(); perm != "" && !sender.HasPermission(perm) {
			continue
		}
		matches = append(matches, key)
	}
	sort.Strings(matches)
	return matches
}

func filterPrefix(candidates []string, partial string) []string {
	partial = strings.ToLower(partial)
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if strings.HasPrefix(strings.ToLower(c), partial) {
			out = append(out, c)
		}
	}
	return out
}
