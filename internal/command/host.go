package command

// Sender is anything the host lets invoke a command: a player, the console,
// a command block.
type Sender interface {
	Name() string
	SendMessage(message string)
	HasPermission(permission string) bool
}

// Dispatchable is the surface the host's command table works with.
type Dispatchable interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Permission() string
	Execute(sender Sender, label string, args []string) bool
	TabComplete(sender Sender, alias string, args []string) []string
}

// Table is the host's command registration table.
type Table interface {
	Register(label string, cmd Dispatchable) error
}

// Source supplies the command definitions for one registration pass.
type Source interface {
	Definitions() ([]Definition, error)
}

// Definitions is a static Source.
type Definitions []Definition

// Definitions returns the slice itself.
func (d Definitions) Definitions() ([]Definition, error) {
	return d, nil
}
