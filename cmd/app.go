package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mywio/release-notifier/pkg/config"
	"github.com/mywio/release-notifier/pkg/core"
	"github.com/mywio/release-notifier/pkg/logging"
	"github.com/mywio/release-notifier/pkg/secrets"
	"github.com/mywio/release-notifier/plugins/discordnotifier"
	"github.com/spf13/cobra"
)

// app is one initialized plugin host for a single command invocation.
type app struct {
	logger   *slog.Logger
	manager  *core.Manager
	resolver *secrets.GoogleResolver
}

func (o *globalOptions) newApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := config.LoadConfigFile(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", o.configFile, err)
	}
	cfg := config.MergeConfigMap(fileCfg, config.LoadConfigMapFromEnv(o.lookupEnv))
	if section, ok := fileCfg["core"]; ok {
		if err := o.settings.MergeConfigMap(section); err != nil {
			return nil, fmt.Errorf("apply core settings: %w", err)
		}
	}

	logger, err := logging.New(cmd.ErrOrStderr(), o.settings.GetString("log-format"), o.settings.GetString("log-level"))
	if err != nil {
		return nil, err
	}

	resolver := secrets.NewGoogleResolver()
	mgr := core.NewManager(logger)
	mgr.SetConfig(cfg)
	mgr.SetHTTPClient(&http.Client{Timeout: o.settings.GetDuration("http-timeout")})
	mgr.SetLookupEnv(o.lookupEnv)
	mgr.SetSecretResolver(resolver)
	mgr.Register(discordnotifier.New())

	if err := mgr.Init(cmd.Context()); err != nil {
		_ = resolver.Close()
		return nil, err
	}
	return &app{logger: logger, manager: mgr, resolver: resolver}, nil
}

func (a *app) run(ctx context.Context, step core.Step, data map[string]any) error {
	a.logger.DebugContext(ctx, "Running release step", "step", step)
	return a.manager.Run(ctx, step, core.EventContext{Logger: a.logger, Data: data})
}

func (a *app) Close() {
	if err := a.resolver.Close(); err != nil {
		a.logger.Warn("Failed to close secret resolver", "error", err)
	}
}

// runStep builds the host, runs step once and tears the host down.
func (o *globalOptions) runStep(cmd *cobra.Command, step core.Step, data map[string]any) error {
	a, err := o.newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	return a.run(cmd.Context(), step, data)
}
