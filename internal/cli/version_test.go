package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand("1.0.0", "abc123", "2025-11-05", "goreleaser")

	assert.Equal(t, "version", cmd.Use)
	assert.Equal(t, "Print version information", cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotEmpty(t, cmd.Example)
}

func TestPrintVersion(t *testing.T) {
	info := VersionInfo{
		Version:   "1.0.0",
		Commit:    "abc123",
		Date:      "2025-11-05",
		BuiltBy:   "goreleaser",
		GoVersion: "go1.23.0",
	}

	tests := []struct {
		name       string
		jsonOutput bool
		want       []string
	}{
		{
			name: "text output",
			want: []string{
				"mccmd version 1.0.0",
				"Commit: abc123",
				"Built: 2025-11-05",
				"Built by: goreleaser",
				"Go: go1.23.0",
			},
		},
		{
			name:       "json output",
			jsonOutput: true,
			want: []string{
				`"status": "success"`,
				`"version": "1.0.0"`,
				`"go_version": "go1.23.0"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printVersion(&buf, info, tt.jsonOutput))

			for _, want := range tt.want {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestVersionCommand_Execute(t *testing.T) {
	isolate(t)

	out, err := execute(t, "--json", "version")
	require.NoError(t, err)

	var result struct {
		Status string      `json:"status"`
		Data   VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "dev", result.Data.Version)
	assert.Equal(t, runtime.Version(), result.Data.GoVersion)
}

func TestPrintVersionText_Format(t *testing.T) {
	info := VersionInfo{
		Version:   "1.0.0",
		Commit:    "abc123",
		Date:      "2025-11-05",
		BuiltBy:   "goreleaser",
		GoVersion: "go1.23.0",
	}

	var buf bytes.Buffer
	require.NoError(t, printVersionText(&buf, info))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "mccmd version 1.0.0", lines[0])
	assert.Equal(t, "Go: go1.23.0", lines[4])
}
