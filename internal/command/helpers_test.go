package command

import (
	"errors"
	"fmt"
)

// fakeSender records messages and grants a fixed permission set.
type fakeSender struct {
	name        string
	permissions map[string]bool
	messages    []string
}

func newSender(name string, permissions ...string) *fakeSender {
	s := &fakeSender{name: name, permissions: make(map[string]bool)}
	for _, p := range permissions {
		s.permissions[p] = true
	}
	return s
}

func (s *fakeSender) Name() string { return s.name }

func (s *fakeSender) SendMessage(message string) { s.messages = append(s.messages, message) }

func (s *fakeSender) HasPermission(p string) bool { return s.permissions[p] }

// fakeConsole is a second sender kind for executable-by checks.
type fakeConsole struct {
	fakeSender
}

// call is one recorded handler invocation.
type call struct {
	id   string
	args []string
}

// recorder collects handler invocations across a tree.
type recorder struct {
	calls []call
}

func (r *recorder) def(desc Descriptor) *Func {
	id := desc.Key()
	return &Func{
		Desc: desc,
		Run: func(_ Sender, args []string) error {
			r.calls = append(r.calls, call{id: id, args: append([]string{}, args...)})
			return nil
		},
	}
}

// fakeTable records registered roots and can refuse names.
type fakeTable struct {
	labels  []string
	roots   []Dispatchable
	refused map[string]bool
}

func newTable() *fakeTable {
	return &fakeTable{refused: make(map[string]bool)}
}

func (t *fakeTable) Register(label string, cmd Dispatchable) error {
	if t.refused[cmd.Name()] {
		return fmt.Errorf("name %q is reserved", cmd.Name())
	}
	t.labels = append(t.labels, label)
	t.roots = append(t.roots, cmd)
	return nil
}

func (t *fakeTable) names() []string {
	names := make([]string, 0, len(t.roots))
	for _, r := range t.roots {
		names = append(names, r.Name())
	}
	return names
}

// failingSource always errors.
type failingSource struct{}

func (failingSource) Definitions() ([]Definition, error) {
	return nil, errors.New("archive unreadable")
}

// treeNames flattens a tree into "path" strings.
func treeNames(roots []*Node) []string {
	var out []string
	for _, root := range roots {
		root.Walk(func(n *Node) {
			out = append(out, n.Path())
		})
	}
	return out
}

// warpTree builds the warp/list/delete scenario by hand.
func warpTree(rec *recorder) (*Node, *Node, *Node) {
	warp := NewNode(rec.def(Descriptor{Name: "warp", Description: "Warp around"}))
	list := NewNode(rec.def(Descriptor{Name: "list", Description: "List warps", Parent: "warp"}))
	del := NewNode(rec.def(Descriptor{
		Name:             "delete",
		Description:      "Delete a warp",
		Aliases:          []string{"del"},
		AliasCompletions: true,
		Permission:       "warp.delete",
		Parent:           "warp",
	}))
	warp.AddSubCommand(list)
	warp.AddSubCommand(del)
	warp.RegisterTabCompletions()
	return warp, list, del
}
