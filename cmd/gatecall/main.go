package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/gatecall/internal/cliconfig"
	"github.com/bft-labs/gatecall/pkg/gatecall"
	gclog "github.com/bft-labs/gatecall/pkg/log"
	"github.com/bft-labs/gatecall/plugins/breaker"
	"github.com/bft-labs/gatecall/plugins/filegate"
	"github.com/bft-labs/gatecall/plugins/redisgate"
	"github.com/bft-labs/gatecall/plugins/resourcegating"
)

const helpDescription = `
Send one HTTP request once its preconditions hold.

The request is held while any configured gate is closed and re-checked on
every poll tick until it either dispatches or runs out of retries.

Gates:
  --token-file     open while the file exists and is non-empty
  --redis-key      open while the key exists in Redis
  --cpu-threshold  closed while the process is busier than the threshold
  --breaker        closed while the circuit breaker is open

Configure via $HOME/.gatecall/config.toml, GATECALL_* env vars, or flags.
`

var exampleUsage = strings.TrimSpace(`
  gatecall GET https://api.example.com/items 'page=2&limit=10'
  gatecall -H 'Authorization: Bearer abc' POST /orders '{"sku":"A1"}' --base-url https://api.example.com
  gatecall --token-file /run/session.token --retries 30 --poll 2s PUT https://api.example.com/profile '{"name":"x"}'
`)

var errCallFailed = errors.New("call failed")

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string
	var headers []string

	log := gclog.NewConsoleLogger(zerolog.InfoLevel).Zerolog()

	root := &cobra.Command{
		Use:           "gatecall [flags] METHOD URL [DATA]",
		Short:         "Send an HTTP request once its gates open",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.RangeArgs(2, 3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// GATECALL_* override the file but not explicitly set flags.
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cliconfig.MergeHeaders(&cfg, headers); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			log = log.Level(cfg.Level())

			method, err := gatecall.ParseMethod(args[0])
			if err != nil {
				return err
			}
			var data any
			if len(args) == 3 {
				data = args[2]
			}

			logCfg := cfg
			if logCfg.RedisPassword != "" {
				logCfg.RedisPassword = "*****"
			}
			log.Debug().Interface("config", logCfg).Msg("configuration")

			return run(cmd.Context(), log, cfg, method, args[1], data)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.gatecall/config.toml)")
	root.Flags().StringArrayVarP(&headers, "header", "H", nil, "request header as 'Name: value' (repeatable)")
	root.Flags().StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "prefix for URLs starting with /")

	root.Flags().IntVar(&cfg.Retries, "retries", cfg.Retries, "poll ticks to wait for the gates before giving up")
	root.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "interval between gate checks")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout (0 disables)")
	root.Flags().DurationVar(&cfg.Wait, "wait", cfg.Wait, "maximum time to wait for the outcome (0 waits until it is known)")

	root.Flags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "gate on the presence of this file")
	root.Flags().StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for --redis-key")
	root.Flags().StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	root.Flags().IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database number")
	root.Flags().StringVar(&cfg.RedisKey, "redis-key", cfg.RedisKey, "gate on the existence of this Redis key")
	root.Flags().BoolVar(&cfg.Breaker, "breaker", cfg.Breaker, "defer requests while a circuit breaker is open")
	root.Flags().Float64Var(&cfg.CPUThreshold, "cpu-threshold", cfg.CPUThreshold, "gate on approximate process load (0 disables)")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errCallFailed) {
			log.Error().Err(err).Msg("gatecall")
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, log zerolog.Logger, cfg cliconfig.Config, method gatecall.Method, url string, data any) error {
	opts := []gatecall.Option{
		gatecall.WithLogger(gclog.NewZerologLogger(log)),
		gatecall.WithEventHandler(&cliEvents{log: log}),
	}
	if cfg.TokenFile != "" {
		fc := filegate.DefaultConfig()
		fc.Path = cfg.TokenFile
		opts = append(opts, filegate.WithFileGate(fc))
	}
	if cfg.RedisKey != "" {
		rc := redisgate.DefaultConfig()
		rc.Addr = cfg.RedisAddr
		rc.Password = cfg.RedisPassword
		rc.DB = cfg.RedisDB
		rc.Key = cfg.RedisKey
		rc.RefreshInterval = cfg.PollInterval
		opts = append(opts, redisgate.WithRedisGate(rc))
	}
	if cfg.CPUThreshold > 0 {
		rg := resourcegating.DefaultConfig()
		rg.CPUThreshold = cfg.CPUThreshold
		opts = append(opts, resourcegating.WithResourceGating(rg))
	}
	if cfg.Breaker {
		opts = append(opts, breaker.WithBreaker(breaker.DefaultConfig()))
	}

	d, err := gatecall.New(gatecall.Config{
		PollInterval:   cfg.PollInterval,
		DefaultRetries: cfg.Retries,
		HTTPTimeout:    cfg.HTTPTimeout,
		BaseURL:        cfg.BaseURL,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create dispatcher: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start dispatcher: %w", err)
	}

	var reqOpts []gatecall.RequestOption
	for name, value := range cfg.Headers {
		reqOpts = append(reqOpts, gatecall.Header(name, value))
	}
	fut := d.Send(ctx, method, url, data, reqOpts...)

	waitCtx := ctx
	if cfg.Wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, cfg.Wait)
		defer cancel()
	}

	body, err := fut.Result(waitCtx)
	if isWaitErr(err) {
		log.Warn().Err(err).Int("pending", d.Pending()).Msg("stopped waiting for outcome")
	}

	// Stop fails anything still queued, so the future is resolved afterwards.
	if stopErr := d.Stop(); stopErr != nil {
		log.Warn().Err(stopErr).Msg("stop dispatcher")
	}
	if isWaitErr(err) {
		if o, ok := fut.Outcome(); ok {
			body, err = gatecall.Result(o)
		}
	}
	if err != nil {
		return reportFailure(log, err)
	}

	fmt.Fprintln(os.Stdout, string(body))
	return nil
}

func isWaitErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func reportFailure(log zerolog.Logger, err error) error {
	ev := log.Error().Err(err)
	if f, ok := gatecall.AsFailure(err); ok {
		ev = ev.Str("kind", f.Kind.String()).Str("method", string(f.Method)).Str("url", f.URL)
		if f.Kind == gatecall.FailureHTTP {
			ev = ev.Int("status", f.Status)
			if len(f.Body) > 0 {
				fmt.Fprintln(os.Stdout, string(f.Body))
			}
		}
	}
	ev.Msg("request failed")
	return errCallFailed
}

// cliEvents logs dispatcher events at debug level, deferrals at info.
type cliEvents struct {
	gatecall.BaseEventHandler
	log zerolog.Logger
}

func (e *cliEvents) OnStateChange(ev gatecall.StateChangeEvent) {
	e.log.Debug().Str("from", ev.Previous.String()).Str("to", ev.Current.String()).Msg("dispatcher state")
}

func (e *cliEvents) OnDeferred(ev gatecall.DeferredEvent) {
	e.log.Info().Str("request_id", ev.RequestID).Str("url", ev.URL).Msg("gate closed, request deferred")
}

func (e *cliEvents) OnCompleted(ev gatecall.CompletedEvent) {
	e.log.Debug().Str("request_id", ev.RequestID).Dur("duration", ev.Duration).Bool("ok", ev.Err == nil).Msg("request completed")
}
