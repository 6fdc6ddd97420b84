package redisgate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/gatecall/pkg/gatecall"
	"github.com/bft-labs/gatecall/pkg/log"
)

func startPlugin(t *testing.T, cfg Config) *Plugin {
	t.Helper()
	p := New(cfg)
	require.NoError(t, p.Initialize(context.Background(), gatecall.PluginConfig{Logger: log.NewNoopLogger()}))
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestPlugin_FollowsKey(t *testing.T) {
	mr := miniredis.RunT(t)
	p := startPlugin(t, Config{Addr: mr.Addr(), Key: "session", RefreshInterval: 10 * time.Millisecond})

	assert.False(t, p.IsOpen())

	require.NoError(t, mr.Set("session", "token"))
	require.Eventually(t, p.IsOpen, 2*time.Second, 10*time.Millisecond, "gate did not open")

	mr.Del("session")
	require.Eventually(t, func() bool { return !p.IsOpen() }, 2*time.Second, 10*time.Millisecond, "gate did not close")
}

func TestPlugin_Refresh(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("session", "token"))

	p := startPlugin(t, Config{Addr: mr.Addr(), Key: "session", RefreshInterval: time.Hour})
	assert.True(t, p.IsOpen(), "initial check should open the gate")

	mr.SetTTL("session", time.Minute)
	mr.FastForward(2 * time.Minute)

	open, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, open)
	assert.False(t, p.IsOpen())
}

func TestPlugin_UnreachableServerKeepsGateClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("session", "token"))

	p := startPlugin(t, Config{Addr: mr.Addr(), Key: "session", RefreshInterval: time.Hour, Timeout: 200 * time.Millisecond})
	require.True(t, p.IsOpen())

	mr.Close()

	_, err := p.Refresh(context.Background())
	assert.Error(t, err)
	assert.False(t, p.IsOpen(), "gate must close when redis is unreachable")
}

func TestPlugin_InjectedClientNotClosed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	p := New(Config{Client: client, Key: "session", RefreshInterval: time.Hour})
	require.NoError(t, p.Initialize(context.Background(), gatecall.PluginConfig{}))
	require.NoError(t, p.Shutdown(context.Background()))

	assert.NoError(t, client.Ping(context.Background()).Err(), "shutdown closed a client it did not create")
}

func TestPlugin_KeyRequired(t *testing.T) {
	err := New(Config{}).Initialize(context.Background(), gatecall.PluginConfig{})
	assert.ErrorContains(t, err, "key is required")
}

func TestWithRedisGate_HoldsRequests(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := gatecall.DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond

	d, err := gatecall.New(cfg,
		WithRedisGate(Config{Addr: mr.Addr(), Key: "session", RefreshInterval: 10 * time.Millisecond}),
		gatecall.WithTransport(gatecall.TransportFunc(func(ctx context.Context, req gatecall.Request) gatecall.Outcome {
			return gatecall.NewSuccess([]byte(`{"ok":true}`))
		})),
	)
	require.NoError(t, err)
	require.NoError(t, d.Start(context.Background()))
	defer d.Stop()

	fut := d.Post(context.Background(), "http://api.test/orders", gatecall.Params{}.Add("id", 1), gatecall.Retries(500))
	assert.Equal(t, 1, d.Pending())

	require.NoError(t, mr.Set("session", "token"))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	body, err := fut.Result(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}
