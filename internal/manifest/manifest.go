// Package manifest declares commands in a YAML file and binds them to Go
// handlers by name.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/host"
	"gopkg.in/yaml.v3"
)

// Sender kinds accepted by executable_by.
const (
	SenderAny     = "any"
	SenderPlayer  = "player"
	SenderConsole = "console"
)

// Manifest is the parsed command file.
type Manifest struct {
	Commands []Entry `yaml:"commands"`
}

// Entry declares one command. Handler names a function in the
// HandlerRegistry. Without a handler the command replies with Reply, or
// sends its usage when Reply is empty as well.
type Entry struct {
	ID                string   `yaml:"id,omitempty"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	Aliases           []string `yaml:"aliases,omitempty"`
	AliasCompletions  bool     `yaml:"alias_completions,omitempty"`
	Permission        string   `yaml:"permission,omitempty"`
	PermissionMessage string   `yaml:"permission_message,omitempty"`
	Parent            string   `yaml:"parent,omitempty"`
	Usage             string   `yaml:"usage,omitempty"`
	Handler           string   `yaml:"handler,omitempty"`
	Reply             string   `yaml:"reply,omitempty"`
	ExecutableBy      string   `yaml:"executable_by,omitempty"`
}

// Descriptor converts the entry's metadata.
func (e Entry) Descriptor() command.Descriptor {
	return command.Descriptor{
		ID:                e.ID,
		Name:              e.Name,
		Description:       e.Description,
		Aliases:           e.Aliases,
		AliasCompletions:  e.AliasCompletions,
		Permission:        e.Permission,
		PermissionMessage: e.PermissionMessage,
		Parent:            e.Parent,
		Usage:             e.Usage,
	}
}

// EntryError reports an entry that could not be bound.
type EntryError struct {
	Index int
	Name  string
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("command #%d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Parse decodes a manifest. Unknown keys are rejected.
func Parse(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return &Manifest{}, nil
		}
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// Bind turns every entry into a command definition. Entries that cannot be
// bound are left out and reported in the joined error; the rest are still
// returned, so their subtrees fail registration on their own.
func (m *Manifest) Bind(registry *HandlerRegistry) (command.Definitions, error) {
	defs := make(command.Definitions, 0, len(m.Commands))
	var errs []error

	for i, entry := range m.Commands {
		def, err := bind(entry, registry)
		if err != nil {
			errs = append(errs, &EntryError{Index: i, Name: entry.Name, Err: err})
			continue
		}
		defs = append(defs, def)
	}
	return defs, errors.Join(errs...)
}

func bind(entry Entry, registry *HandlerRegistry) (*command.Func, error) {
	executable, err := senderKind(entry.ExecutableBy)
	if err != nil {
		return nil, err
	}

	def := &command.Func{Desc: entry.Descriptor(), Executable: executable}
	switch {
	case entry.Handler != "":
		h, ok := registry.Lookup(entry.Handler)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownHandler, entry.Handler)
		}
		def.Run = h
	case entry.Reply != "":
		def.Run = reply(entry.Reply)
	}
	return def, nil
}

func senderKind(kind string) (func(command.Sender) bool, error) {
	switch strings.ToLower(kind) {
	case "", SenderAny:
		return nil, nil
	case SenderPlayer:
		return command.SenderIs[*host.Player](), nil
	case SenderConsole:
		return command.SenderIs[*host.Console](), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSenderKind, kind)
}

// reply sends text with {sender} and {args} substituted.
func reply(text string) Handler {
	return func(sender command.Sender, args []string) error {
		r := strings.NewReplacer("{sender}", sender.Name(), "{args}", strings.Join(args, " "))
		sender.SendMessage(r.Replace(text))
		return nil
	}
}

// FileSource reads a manifest file on every registration pass.
type FileSource struct {
	Path     string
	Registry *HandlerRegistry
	Logger   *slog.Logger
}

// Definitions loads and binds the manifest. A file that cannot be read or
// parsed fails the pass; entries that cannot be bound are logged and skipped.
func (s *FileSource) Definitions() ([]command.Definition, error) {
	m, err := Load(s.Path)
	if err != nil {
		return nil, err
	}

	defs, err := m.Bind(s.Registry)
	if err != nil {
		log := s.Logger
		if log == nil {
			log = slog.Default()
		}
		log.Warn("skipping manifest entries", "path", s.Path, "error", err)
	}
	return defs, nil
}
