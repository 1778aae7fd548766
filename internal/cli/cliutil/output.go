// Package cliutil holds the output and config helpers shared by the
// command groups.
package cliutil

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/steviee/mccmd/internal/app"
	"github.com/steviee/mccmd/internal/state"
)

// Output represents the JSON output format.
type Output struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// JSONOutput reports whether the --json flag is set on cmd or inherited
// from the root command.
func JSONOutput(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

// WriteJSON encodes out indented.
func WriteJSON(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	return nil
}

// Success writes a success envelope around data.
func Success(w io.Writer, data interface{}, message string) error {
	return WriteJSON(w, Output{Status: "success", Data: data, Message: message})
}

// Fail writes an error envelope when jsonOutput is set and returns err.
func Fail(w io.Writer, jsonOutput bool, err error) error {
	if jsonOutput {
		_ = WriteJSON(w, Output{Status: "error", Error: err.Error()})
	}
	return err
}

// LoadConfig returns the validated configuration read by the root command.
func LoadConfig() (*state.Config, error) {
	return app.LoadConfig(viper.GetViper())
}
