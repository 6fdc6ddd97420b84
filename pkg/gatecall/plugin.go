package gatecall

import (
	"context"
	"fmt"
)

// Plugin extends a Dispatcher. Plugins are initialized on Start in
// registration order and shut down on Stop in reverse order.
//
// A plugin may additionally implement Gate, in which case requests are sent
// only while it is open, and TransportMiddleware, in which case it wraps the
// transport. Both are wired when the Dispatcher is created.
type Plugin interface {
	// Name returns a short identifier used in logs.
	Name() string

	// Initialize prepares the plugin. An error aborts Start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown releases plugin resources.
	Shutdown(ctx context.Context) error
}

// PluginConfig is passed to Plugin.Initialize.
type PluginConfig struct {
	// Logger is the dispatcher logger, scoped to the plugin.
	Logger Logger

	// Config is the dispatcher configuration after defaults were applied.
	Config Config
}

// BasePlugin implements Initialize and Shutdown as no-ops.
type BasePlugin struct{}

func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }
func (BasePlugin) Shutdown(context.Context) error                 { return nil }

func initializePlugin(ctx context.Context, p Plugin, cfg PluginConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during initialize: %v", p.Name(), r)
		}
	}()
	return p.Initialize(ctx, cfg)
}

func shutdownPlugin(ctx context.Context, p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin %s panicked during shutdown: %v", p.Name(), r)
		}
	}()
	return p.Shutdown(ctx)
}
