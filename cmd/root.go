package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mywio/release-notifier/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// globalOptions carries the persistent flags and the settings they feed.
type globalOptions struct {
	configFile string
	settings   *viper.Viper
	lookupEnv  config.LookupFunc
}

func newGlobalOptions(lookupEnv config.LookupFunc) *globalOptions {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	v := viper.New()
	v.SetEnvPrefix("NOTIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("log-format", "json")
	v.SetDefault("log-level", "info")
	v.SetDefault("http-timeout", 15*time.Second)
	return &globalOptions{settings: v, lookupEnv: lookupEnv}
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "release-notifier",
		Short: "Post release notifications to a Discord webhook",
		Long: `release-notifier runs the Discord notifier for one release lifecycle step.

The webhook URL comes from the discord.webhookUrl setting of the config file
or from the DISCORD_WEBHOOK environment variable. Secret Manager references
(gcpsm://projects/<p>/secrets/<s>) are resolved at send time.

Steps:
  release-notifier verify-conditions   Check the notifier configuration
  release-notifier success             Announce a published release
  release-notifier fail                Report a failed release
  release-notifier plugins             List registered plugins`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (YAML or JSON)")
	flags.String("log-format", "json", "log format: json|text")
	flags.String("log-level", "info", "log level: debug|info|warn|error")
	flags.Duration("http-timeout", 15*time.Second, "timeout for outbound HTTP calls")
	for _, name := range []string{"log-format", "log-level", "http-timeout"} {
		_ = opts.settings.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		newVerifyConditionsCmd(opts),
		newSuccessCmd(opts),
		newFailCmd(opts),
		newPluginsCmd(opts),
	)
	return root
}

// Execute is the entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newGlobalOptions(nil)).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
