package command

import (
	"strings"
	"unicode"
)

// Descriptor is the read-only metadata of one command node.
type Descriptor struct {
	// ID identifies the definition for Parent references. Defaults to the
	// lower-cased Name.
	ID string

	// Name is matched case-insensitively. Required.
	Name string

	// Description is shown in help output. Required.
	Description string

	// Aliases are alternative names, matched like Name.
	Aliases []string

	// AliasCompletions adds Aliases to the parent's tab completions.
	AliasCompletions bool

	// Permission gates the node and its whole subtree. Empty means none.
	Permission string

	// PermissionMessage overrides DefaultPermissionMessage.
	PermissionMessage string

	// Parent is the ID of the parent definition. Empty means root. A parent
	// without an explicit ID may be referred to by its Name in any case.
	Parent string

	// Usage is sent to the sender when the handler returns ErrUsage.
	Usage string
}

// Key returns the identity used by Parent references.
func (d Descriptor) Key() string {
	if d.ID != "" {
		return d.ID
	}
	return strings.ToLower(d.Name)
}

// IsRoot reports whether the descriptor has no parent.
func (d Descriptor) IsRoot() bool {
	return d.Parent == ""
}

// Labels returns the lower-cased name followed by the lower-cased aliases.
func (d Descriptor) Labels() []string {
	labels := make([]string, 0, len(d.Aliases)+1)
	labels = append(labels, strings.ToLower(d.Name))
	for _, alias := range d.Aliases {
		labels = append(labels, strings.ToLower(alias))
	}
	return labels
}

// Validate checks that the descriptor can be registered.
func Validate(d Descriptor) error {
	if strings.TrimSpace(d.Name) == "" {
		return &MissingRequiredMetadataError{ID: d.ID, Field: "name"}
	}
	if strings.IndexFunc(d.Name, unicode.IsSpace) >= 0 {
		return &MissingRequiredMetadataError{ID: d.Key(), Field: "name without whitespace"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &MissingRequiredMetadataError{ID: d.Key(), Field: "description"}
	}
	for _, alias := range d.Aliases {
		if strings.TrimSpace(alias) == "" || strings.IndexFunc(alias, unicode.IsSpace) >= 0 {
			return &MissingRequiredMetadataError{ID: d.Key(), Field: "non-blank aliases"}
		}
	}
	return nil
}

// Definition is implemented by command authors.
type Definition interface {
	Descriptor() Descriptor

	// ExecutableBy reports whether the sender kind may run Execute. This is
	// not an authorization check; permissions are handled by the node.
	ExecutableBy(sender Sender) bool

	// Execute runs the command with the arguments that follow its name.
	Execute(sender Sender, args []string) error
}

// Func adapts plain functions to a Definition.
type Func struct {
	Desc       Descriptor
	Run        func(sender Sender, args []string) error
	Executable func(sender Sender) bool
}

// Descriptor returns f.Desc.
func (f *Func) Descriptor() Descriptor {
	return f.Desc
}

// ExecutableBy defers to f.Executable, allowing every sender when it is nil.
func (f *Func) ExecutableBy(sender Sender) bool {
	if f.Executable == nil {
		return true
	}
	return f.Executable(sender)
}

// Execute calls f.Run. A nil Run makes the command a pure group that only
// reports its usage.
func (f *Func) Execute(sender Sender, args []string) error {
	if f.Run == nil {
		return ErrUsage
	}
	return f.Run(sender, args)
}

// AnySender accepts every sender.
func AnySender(Sender) bool {
	return true
}

// SenderIs returns a predicate accepting senders whose dynamic type
// implements or is T.
func SenderIs[T Sender]() func(Sender) bool {
	return func(s Sender) bool {
		_, ok := s.(T)
		return ok
	}
}
