package filegate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/gatecall/pkg/gatecall"
	"github.com/bft-labs/gatecall/pkg/log"
)

func startPlugin(t *testing.T, path string) *Plugin {
	t.Helper()
	p := New(Config{Path: path, DebounceDelay: 10 * time.Millisecond})
	require.NoError(t, p.Initialize(context.Background(), gatecall.PluginConfig{Logger: log.NewNoopLogger()}))
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestPlugin_FollowsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	p := startPlugin(t, path)

	assert.False(t, p.IsOpen(), "gate open without a token file")

	require.NoError(t, os.WriteFile(path, []byte("secret"), 0o600))
	require.Eventually(t, p.IsOpen, 2*time.Second, 10*time.Millisecond, "gate did not open after write")

	require.NoError(t, os.Truncate(path, 0))
	require.Eventually(t, func() bool { return !p.IsOpen() }, 2*time.Second, 10*time.Millisecond, "gate stayed open for empty file")

	require.NoError(t, os.WriteFile(path, []byte("again"), 0o600))
	require.Eventually(t, p.IsOpen, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return !p.IsOpen() }, 2*time.Second, 10*time.Millisecond, "gate stayed open after remove")
}

func TestPlugin_OpenWhenFileExistsAtStart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("secret"), 0o600))

	p := startPlugin(t, path)

	assert.True(t, p.IsOpen())
}

func TestPlugin_Refresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	p := New(Config{Path: path})

	assert.False(t, p.Refresh())
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	assert.True(t, p.Refresh())
	assert.True(t, p.IsOpen())
}

func TestPlugin_InitializeErrors(t *testing.T) {
	err := New(Config{}).Initialize(context.Background(), gatecall.PluginConfig{})
	assert.ErrorContains(t, err, "path is required")

	missingDir := filepath.Join(t.TempDir(), "missing", "token")
	err = New(Config{Path: missingDir}).Initialize(context.Background(), gatecall.PluginConfig{})
	assert.Error(t, err)
}

func TestWithFileGate_HoldsRequests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	cfg := gatecall.DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond

	var sent []string
	d, err := gatecall.New(cfg,
		WithFileGate(Config{Path: path, DebounceDelay: 10 * time.Millisecond}),
		gatecall.WithTransport(gatecall.TransportFunc(func(ctx context.Context, req gatecall.Request) gatecall.Outcome {
			sent = append(sent, req.URL())
			return gatecall.NewSuccess(nil)
		})),
	)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	defer d.Stop()

	fut := d.Get(context.Background(), "http://api.test/me", nil, gatecall.Retries(500))
	assert.Equal(t, 1, d.Pending())

	require.NoError(t, os.WriteFile(path, []byte("token"), 0o600))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	body, err := fut.Result(ctx)
	require.NoError(t, err)
	assert.Equal(t, "true", string(body))
	assert.Equal(t, []string{"http://api.test/me"}, sent)
}
