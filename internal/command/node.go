package command

import (
	"errors"
	"fmt"
	"strings"
)

// Messages sent to senders. The &c prefix is the host's red colour code.
const (
	DefaultPermissionMessage = "&cYou do not have permission to execute this command."
	SenderRejectedMessage    = "&cYou are not able to run this command."
	InternalErrorMessage     = "&cAn internal error occurred while attempting to perform this command."
	usagePrefix              = "&cUsage: "
)

// Node is one resolved command in the tree. The tree is append-only while it
// is built and read-only afterwards, so dispatch needs no locking.
type Node struct {
	def         Definition
	desc        Descriptor
	parent      *Node
	children    []*Node
	index       map[string]*Node
	completions [][]string
	opts        *options
}

// NewNode wraps a definition. Use it when building a tree by hand; the
// resolver calls it for every definition it registers.
func NewNode(def Definition, opts ...Option) *Node {
	return newNode(def, def.Descriptor(), newOptions(opts))
}

func newNode(def Definition, desc Descriptor, opts *options) *Node {
	return &Node{
		def:   def,
		desc:  desc,
		index: make(map[string]*Node),
		opts:  opts,
	}
}

// Name returns the lower-cased command name.
func (n *Node) Name() string {
	return strings.ToLower(n.desc.Name)
}

// Aliases returns the declared aliases.
func (n *Node) Aliases() []string {
	return append([]string(nil), n.desc.Aliases...)
}

// Description returns the command description.
func (n *Node) Description() string {
	return n.desc.Description
}

// Usage returns the usage string, falling back to the command path.
func (n *Node) Usage() string {
	if n.desc.Usage != "" {
		return n.desc.Usage
	}
	return "/" + n.Path()
}

// Permission returns the permission gating this node, or "".
func (n *Node) Permission() string {
	return n.desc.Permission
}

// PermissionMessage returns the message sent when the permission check fails.
func (n *Node) PermissionMessage() string {
	if n.desc.PermissionMessage != "" {
		return n.desc.PermissionMessage
	}
	return DefaultPermissionMessage
}

// Descriptor returns the node's metadata.
func (n *Node) Descriptor() Descriptor {
	return n.desc
}

// Parent returns the parent node, nil for roots.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the subcommands in registration order.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// Path returns the names from the root down to n, separated by spaces.
func (n *Node) Path() string {
	if n.parent == nil {
		return n.Name()
	}
	return n.parent.Path() + " " + n.Name()
}

// Walk calls fn for n and every descendant, depth-first pre-order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, child := range n.children {
		child.Walk(fn)
	}
}

// AddSubCommand appends child and indexes its name and aliases. When a token
// is already used by a sibling the new child takes it over; the shadowed
// tokens are returned. Adding a child that already has a parent panics.
func (n *Node) AddSubCommand(child *Node) []string {
	if child.parent != nil {
		panic(fmt.Sprintf("command %q already belongs to %q", child.Name(), child.parent.Path()))
	}
	child.parent = n
	n.children = append(n.children, child)

	var shadowed []string
	for _, label := range child.desc.Labels() {
		if prev, ok := n.index[label]; ok && prev != child {
			shadowed = append(shadowed, label)
		}
		n.index[label] = child
	}
	return shadowed
}

// Lookup returns the child matching token, ignoring case.
func (n *Node) Lookup(token string) (*Node, bool) {
	child, ok := n.index[strings.ToLower(token)]
	return child, ok
}

// Permitted reports whether sender holds the node's permission.
func (n *Node) Permitted(sender Sender) bool {
	return n.desc.Permission == "" || sender.HasPermission(n.desc.Permission)
}

// Execute is the host entry point. The node's own permission gates the whole
// invocation before Dispatch runs.
func (n *Node) Execute(sender Sender, label string, args []string) bool {
	if !n.Permitted(sender) {
		sender.SendMessage(n.PermissionMessage())
		n.opts.observe(n.Path(), OutcomePermissionDenied)
		return true
	}
	return n.Dispatch(sender, args)
}

// Dispatch delegates to the child named by args[0] or runs the node's own
// handler. Exactly one of delegate, deny, execute or reject happens, and the
// result is always true.
func (n *Node) Dispatch(sender Sender, args []string) bool {
	if len(args) > 0 {
		if child, ok := n.Lookup(args[0]); ok {
			if !child.Permitted(sender) {
				sender.SendMessage(child.PermissionMessage())
				n.opts.observe(child.Path(), OutcomePermissionDenied)
				return true
			}
			return child.Dispatch(sender, args[1:])
		}
	}
	n.run(sender, args)
	return true
}

func (n *Node) run(sender Sender, args []string) {
	outcome := OutcomeExecuted
	defer func() {
		if r := recover(); r != nil {
			n.opts.log().Error("command handler panicked", "command", n.Path(), "sender", sender.Name(), "panic", r)
			sender.SendMessage(InternalErrorMessage)
			outcome = OutcomeFailed
		}
		n.opts.observe(n.Path(), outcome)
	}()

	if !n.def.ExecutableBy(sender) {
		sender.SendMessage(SenderRejectedMessage)
		outcome = OutcomeSenderRejected
		return
	}

	err := n.def.Execute(sender, args)
	switch {
	case err == nil:
	case errors.Is(err, ErrUsage):
		sender.SendMessage(usagePrefix + n.Usage())
		outcome = OutcomeUsage
	default:
		n.opts.log().Error("command failed", "command", n.Path(), "sender", sender.Name(), "error", err)
		sender.SendMessage(InternalErrorMessage)
		outcome = OutcomeFailed
	}
}
