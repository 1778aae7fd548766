package command

// RegisterTabCompletions precomputes the candidate list for every argument
// depth below n. Level i holds the names of all nodes i+1 steps down, plus
// their aliases when AliasCompletions is set, in registration order and with
// the declared casing. Duplicates across branches are kept.
func (n *Node) RegisterTabCompletions() {
	n.completions = buildCompletions(n.children)
}

func buildCompletions(level []*Node) [][]string {
	var completions [][]string
	for len(level) > 0 {
		candidates := make([]string, 0, len(level))
		var next []*Node
		for _, node := range level {
			next = append(next, node.children...)
			candidates = append(candidates, node.desc.Name)
			if node.desc.AliasCompletions {
				candidates = append(candidates, node.desc.Aliases...)
			}
		}
		completions = append(completions, candidates)
		level = next
	}
	return completions
}

// Depth returns the number of precomputed completion levels.
func (n *Node) Depth() int {
	return len(n.completions)
}

// TabComplete returns the full candidate pool for the last argument
// position. Filtering by prefix or permission is left to the host.
func (n *Node) TabComplete(_ Sender, _ string, args []string) []string {
	i := len(args) - 1
	if i < 0 || i >= len(n.completions) {
		return []string{}
	}
	return append([]string(nil), n.completions[i]...)
}
