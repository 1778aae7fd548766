package cliutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONOutput(t *testing.T) {
	root := &cobra.Command{Use: "root"}
	root.PersistentFlags().Bool("json", false, "")
	child := &cobra.Command{Use: "child", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)

	assert.False(t, JSONOutput(&cobra.Command{Use: "bare"}), "missing flag")

	root.SetArgs([]string{"child", "--json"})
	require.NoError(t, root.Execute())
	assert.True(t, JSONOutput(child))
}

func TestSuccess(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Success(&buf, map[string]int{"count": 2}, "done"))

	var out Output
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "done", out.Message)
	assert.Equal(t, map[string]interface{}{"count": 2.0}, out.Data)
}

func TestFail(t *testing.T) {
	tests := []struct {
		name       string
		jsonOutput bool
		wantOutput bool
	}{
		{name: "text output stays silent", jsonOutput: false, wantOutput: false},
		{name: "json output writes envelope", jsonOutput: true, wantOutput: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			boom := errors.New("boom")

			err := Fail(&buf, tt.jsonOutput, boom)
			assert.ErrorIs(t, err, boom)
			if !tt.wantOutput {
				assert.Empty(t, buf.String())
				return
			}
			var out Output
			require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
			assert.Equal(t, "error", out.Status)
			assert.Equal(t, "boom", out.Error)
		})
	}
}
