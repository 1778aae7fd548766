package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/steviee/mccmd/internal/command"
	"github.com/steviee/mccmd/internal/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warpDefinitions() command.Definitions {
	return command.Definitions{
		&command.Func{Desc: command.Descriptor{Name: "warp", Description: "Warp"}},
		&command.Func{Desc: command.Descriptor{Name: "list", Description: "List", Parent: "warp"}, Run: func(command.Sender, []string) error { return nil }},
		&command.Func{Desc: command.Descriptor{Name: "delete", Description: "Delete", Parent: "warp", Permission: "warp.delete"}},
		&command.Func{Desc: command.Descriptor{Name: "orphan", Description: "Orphan", Parent: "nowhere"}},
		&command.Func{Desc: command.Descriptor{Name: "a", Description: "A", Parent: "b"}},
		&command.Func{Desc: command.Descriptor{Name: "b", Description: "B", Parent: "a"}},
		&command.Func{Desc: command.Descriptor{Name: "c", Description: "C", Parent: "a"}},
		&command.Func{Desc: command.Descriptor{Name: "", Description: "Nameless"}},
	}
}

func TestMetrics_Registration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	report, err := command.RegisterCommands(warpDefinitions(), host.NewCommandMap(), "warps", command.WithObserver(m.Observer("warps")))
	require.NoError(t, err)
	require.Len(t, report.Errors, 5)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RegisteredCommands.WithLabelValues("warps")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistrationErrors.WithLabelValues("warps", "cyclic_parent")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RegistrationErrors.WithLabelValues("warps", "unresolved_parent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RegistrationErrors.WithLabelValues("warps", "missing_metadata")))
}

func TestMetrics_Dispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	table := host.NewCommandMap()
	_, err := command.RegisterCommands(warpDefinitions(), table, "warps", command.WithObserver(m.Observer("warps")))
	require.NoError(t, err)

	steve := host.NewPlayer("Steve", nil, nil)
	table.Dispatch(steve, "/warp list")
	table.Dispatch(steve, "/warp list")
	table.Dispatch(steve, "/warp delete spawn")
	table.Dispatch(steve, "/warp")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("warps", "warp list", "executed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("warps", "warp delete", "permission_denied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DispatchTotal.WithLabelValues("warps", "warp", "usage")))
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: &command.CyclicParentError{Chain: []string{"a", "a"}}, want: "cyclic_parent"},
		{err: &command.UnresolvedParentError{ID: "c", Parent: "a", Err: &command.CyclicParentError{}}, want: "unresolved_parent"},
		{err: &command.DuplicateCommandError{ID: "warp"}, want: "duplicate"},
		{err: &command.MissingRequiredMetadataError{Field: "name"}, want: "missing_metadata"},
		{err: &command.RegistrationError{Label: "warps", Name: "warp", Err: errors.New("taken")}, want: "host_rejected"},
		{err: errors.New("something else"), want: "other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.Observer("warps").ObserveDispatch("warp", command.OutcomeExecuted)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mccmd_dispatch_total{command="warp",label="warps",outcome="executed"} 1`)
}

func TestServe(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	reg := prometheus.NewRegistry()
	NewMetrics(reg).Observer("warps").ObserveDispatch("warp", command.OutcomeExecuted)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, addr, "/metrics", reg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	var body string
	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return false
		}
		body = string(data)
		return true
	}, 2*time.Second, 20*time.Millisecond)
	assert.True(t, strings.Contains(body, "mccmd_dispatch_total"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
