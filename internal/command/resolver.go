package command

import (
	"errors"
	"fmt"
	"strings"
)

// Report is the result of one registration pass.
type Report struct {
	// Roots are the root nodes handed to the host table, in build order.
	Roots []*Node

	// Registered counts every node that ended up in the tree.
	Registered int

	// Errors holds one error per definition that was left out.
	Errors []error
}

// Err joins all per-definition errors, nil when there are none.
func (r *Report) Err() error {
	return errors.Join(r.Errors...)
}

// RegisterCommands resolves the definitions from src into a tree, registers
// every root with table under label and precomputes tab completions.
//
// A malformed definition never stops the others from registering: its error
// is collected in the report, together with the errors of every definition
// below it. The returned error is only set when src itself fails.
func RegisterCommands(src Source, table Table, label string, opts ...Option) (*Report, error) {
	if src == nil {
		return nil, fmt.Errorf("command source cannot be nil")
	}
	if table == nil {
		return nil, fmt.Errorf("command table cannot be nil")
	}

	defs, err := src.Definitions()
	if err != nil {
		return nil, fmt.Errorf("failed to load command definitions: %w", err)
	}

	r := &resolver{
		table:    table,
		label:    strings.ToLower(label),
		opts:     newOptions(opts),
		defs:     make(map[string]Definition, len(defs)),
		descs:    make(map[string]Descriptor, len(defs)),
		built:    make(map[string]*Node, len(defs)),
		failed:   make(map[string]error),
		rejected: make(map[string]error),
		report:   &Report{},
	}
	r.resolve(defs)

	if ro, ok := r.opts.observer.(RegistrationObserver); ok {
		ro.ObserveRegistration(r.report)
	}
	return r.report, nil
}

// resolver holds the state of one registration pass and is discarded after.
type resolver struct {
	table  Table
	label  string
	opts   *options
	order  []string
	defs   map[string]Definition
	descs  map[string]Descriptor
	built  map[string]*Node
	failed map[string]error

	// rejected holds definitions that never made it into defs.
	rejected map[string]error

	stack  []string
	report *Report
}

func (r *resolver) resolve(defs []Definition) {
	for i, def := range defs {
		if def == nil {
			id := fmt.Sprintf("#%d", i)
			r.reject(id, &MissingRequiredMetadataError{ID: id, Field: "definition"})
			continue
		}
		desc := def.Descriptor()
		key := desc.Key()
		if err := Validate(desc); err != nil {
			r.reject(key, err)
			continue
		}
		if _, dup := r.defs[key]; dup {
			r.reject(key, &DuplicateCommandError{ID: key})
			continue
		}
		r.defs[key] = def
		r.descs[key] = desc
		r.order = append(r.order, key)
	}

	for _, key := range r.order {
		_, _ = r.build(key)
	}

	for _, root := range r.report.Roots {
		root.RegisterTabCompletions()
	}

	r.opts.log().Debug("commands registered",
		"label", r.label,
		"roots", len(r.report.Roots),
		"registered", r.report.Registered,
		"failed", len(r.report.Errors),
	)
}

// parentKey maps a Parent reference to a definition key. An exact ID wins;
// otherwise the reference matches a name-derived key case-insensitively.
func (r *resolver) parentKey(parent string) string {
	if _, ok := r.defs[parent]; ok {
		return parent
	}
	lower := strings.ToLower(parent)
	if desc, ok := r.descs[lower]; ok && desc.ID == "" {
		return lower
	}
	return parent
}

// build returns the node for key, building its parent chain first.
func (r *resolver) build(key string) (*Node, error) {
	if node, ok := r.built[key]; ok {
		return node, nil
	}
	if err, ok := r.failed[key]; ok {
		return nil, err
	}
	for i, k := range r.stack {
		if k == key {
			chain := append(append([]string(nil), r.stack[i:]...), key)
			return nil, &CyclicParentError{Chain: chain}
		}
	}

	desc := r.descs[key]
	node := newNode(r.defs[key], desc, r.opts)

	if desc.IsRoot() {
		if err := r.table.Register(r.label, node); err != nil {
			return nil, r.fail(key, &RegistrationError{Label: r.label, Name: node.Name(), Err: err})
		}
		r.built[key] = node
		r.report.Roots = append(r.report.Roots, node)
		r.report.Registered++
		return node, nil
	}

	parentKey := r.parentKey(desc.Parent)
	if _, ok := r.defs[parentKey]; !ok {
		return nil, r.fail(key, &UnresolvedParentError{ID: key, Parent: desc.Parent, Err: r.rejected[parentKey]})
	}

	r.stack = append(r.stack, key)
	parent, err := r.build(parentKey)
	r.stack = r.stack[:len(r.stack)-1]
	if err != nil {
		var cyclic *CyclicParentError
		if errors.As(err, &cyclic) && cyclic.involves(key) {
			return nil, r.fail(key, cyclic)
		}
		return nil, r.fail(key, &UnresolvedParentError{ID: key, Parent: desc.Parent, Err: err})
	}

	if shadowed := parent.AddSubCommand(node); len(shadowed) > 0 {
		r.opts.log().Warn("subcommand shadows sibling",
			"command", node.Path(),
			"tokens", shadowed,
		)
	}
	r.built[key] = node
	r.report.Registered++
	return node, nil
}

func (r *resolver) reject(key string, err error) {
	if _, ok := r.defs[key]; !ok {
		r.rejected[key] = err
	}
	r.report.Errors = append(r.report.Errors, err)
	r.opts.log().Warn("command not registered", "command", key, "error", err)
}

func (r *resolver) fail(key string, err error) error {
	r.failed[key] = err
	r.report.Errors = append(r.report.Errors, err)
	r.opts.log().Warn("command not registered", "command", key, "error", err)
	return err
}
