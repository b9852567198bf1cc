package discordnotifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/mywio/release-notifier/pkg/branch"
	"github.com/mywio/release-notifier/pkg/config"
	"github.com/mywio/release-notifier/pkg/core"
	"github.com/mywio/release-notifier/pkg/discord"
	"github.com/mywio/release-notifier/pkg/secrets"
	"github.com/mywio/release-notifier/pkg/template"
)

// Name is the plugin name and its config section.
const Name = "discord"

// ErrConfiguration matches every error caused by a missing or unusable
// webhook setting.
var ErrConfiguration = errors.New("discord notifier is not configured")

// Hook errors are printed to release logs verbatim; keep their wording.
var (
	ErrWebhookNotProvided   error = configError("No Discord webhook URL provided. Set it in the plugin config or as DISCORD_WEBHOOK environment variable.")
	ErrWebhookNotSet        error = configError("Discord webhook URL is not set.")
	ErrNoRelease                  = errors.New("No release information available.")
	ErrInvalidBranchPattern       = branch.ErrInvalidPattern
)

type configError string

func (e configError) Error() string { return string(e) }

func (configError) Is(target error) bool { return target == ErrConfiguration }

type pluginConfig struct {
	WebhookURL    string `yaml:"webhookUrl"`
	EmbedJSON     any    `yaml:"embedJson"`
	FailEmbedJSON any    `yaml:"failEmbedJson"`
	Branches      any    `yaml:"branches"`
}

// Notifier posts release notifications to a Discord webhook.
type Notifier struct {
	logger    *slog.Logger
	client    *http.Client
	lookupEnv config.LookupFunc
	resolver  secrets.Resolver

	webhook   core.Secret
	embed     any
	failEmbed any
	branches  []string
}

// New returns an uninitialized notifier; Init must run before any hook.
func New() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Name() string {
	return Name
}

func (n *Notifier) Init(ctx context.Context, logger *slog.Logger, registry core.Registry) error {
	n.logger = logger
	if n.logger == nil {
		n.logger = slog.Default()
	}
	var cfg pluginConfig
	if registry != nil {
		if _, err := core.DecodeSection(registry.GetConfig(), Name, &cfg); err != nil {
			return fmt.Errorf("decode %s config: %w", Name, err)
		}
		n.client = registry.GetHTTPClient()
		n.lookupEnv = registry.LookupEnv
		n.resolver = registry.GetSecretResolver()
	}
	if n.client == nil {
		n.client = http.DefaultClient
	}
	if n.lookupEnv == nil {
		n.lookupEnv = os.LookupEnv
	}

	n.webhook = core.NewSecret(strings.TrimSpace(cfg.WebhookURL))
	n.embed = cfg.EmbedJSON
	n.failEmbed = cfg.FailEmbedJSON
	n.branches = config.StringList(cfg.Branches)

	n.logger.DebugContext(ctx, "Discord notifier initialized",
		"webhook", n.webhook,
		"branches", n.branches,
		"custom_embed", n.embed != nil,
		"custom_fail_embed", n.failEmbed != nil)
	return nil
}

func (n *Notifier) Description() string { return "Discord release notifier" }

func (n *Notifier) Capabilities() []core.Capability {
	return []core.Capability{core.CapabilityVerifier, core.CapabilityNotifier}
}

func (n *Notifier) Status() core.ServiceStatus {
	if n.rawWebhook() == "" {
		return core.StatusDegraded
	}
	return core.StatusHealthy
}

type publicConfig struct {
	WebhookURL    core.Secret `json:"webhookUrl"`
	Branches      []string    `json:"branches,omitempty"`
	EmbedJSON     any         `json:"embedJson,omitempty"`
	FailEmbedJSON any         `json:"failEmbedJson,omitempty"`
}

// Config returns the effective settings with the webhook URL redacted.
func (n *Notifier) Config() any {
	return publicConfig{
		WebhookURL:    core.NewSecret(n.rawWebhook()),
		Branches:      n.branches,
		EmbedJSON:     n.embed,
		FailEmbedJSON: n.failEmbed,
	}
}

// VerifyConditions checks that a webhook URL is available and the branch
// patterns compile. Secret references are resolved once to prove access.
func (n *Notifier) VerifyConditions(ctx context.Context, ec core.EventContext) error {
	raw := n.rawWebhook()
	if raw == "" {
		return ErrWebhookNotProvided
	}
	if err := branch.Validate(n.branches); err != nil {
		return fmt.Errorf("branches: %w", err)
	}
	if _, err := n.resolveWebhook(ctx, raw); err != nil {
		return err
	}
	ec.Log().DebugContext(ctx, "Discord notifier conditions verified", "webhook", core.NewSecret(raw))
	return nil
}

// Success announces the published release.
func (n *Notifier) Success(ctx context.Context, ec core.EventContext) error {
	raw := n.rawWebhook()
	if raw == "" {
		return ErrWebhookNotSet
	}
	if branch.ShouldSkip(ec.Log(), n.branches, ec.BranchName()) {
		return nil
	}
	release, ok := ec.NextRelease()
	if !ok {
		return ErrNoRelease
	}

	var body any
	if n.embed != nil {
		resolved, err := template.Interpolate(n.embed, ec.Data)
		if err != nil {
			return fmt.Errorf("build success message: %w", err)
		}
		body = discord.TrimMessage(resolved, discord.MaxDescriptionLength)
	} else {
		body = discord.SuccessMessage(release.Version, release.Notes).Trimmed(discord.MaxDescriptionLength)
	}

	payload, err := discord.Encode(body)
	if err != nil {
		return fmt.Errorf("encode success message: %w", err)
	}
	ec.Log().InfoContext(ctx, "Sending Discord notification", "json", string(payload))
	return n.send(ctx, ec, raw, payload)
}

// Fail reports the errors that stopped the release.
func (n *Notifier) Fail(ctx context.Context, ec core.EventContext) error {
	raw := n.rawWebhook()
	if raw == "" {
		return ErrWebhookNotSet
	}
	if branch.ShouldSkip(ec.Log(), n.branches, ec.BranchName()) {
		return nil
	}

	var body any
	if n.failEmbed != nil {
		resolved, err := template.Interpolate(n.failEmbed, ec.Data)
		if err != nil {
			return fmt.Errorf("build failure message: %w", err)
		}
		body = resolved
	} else {
		body = discord.FailureMessage(ec.ErrorMessages())
	}

	payload, err := discord.Encode(body)
	if err != nil {
		return fmt.Errorf("encode failure message: %w", err)
	}
	return n.send(ctx, ec, raw, payload)
}

func (n *Notifier) send(ctx context.Context, ec core.EventContext, raw string, payload []byte) error {
	webhookURL, err := n.resolveWebhook(ctx, raw)
	if err != nil {
		return err
	}
	return discord.NewClient(n.client, ec.Log()).Send(ctx, webhookURL, payload)
}

// rawWebhook returns the configured webhook, falling back to DISCORD_WEBHOOK.
func (n *Notifier) rawWebhook() string {
	if !n.webhook.IsZero() {
		return n.webhook.Value
	}
	if n.lookupEnv == nil {
		return ""
	}
	v, ok := n.lookupEnv(config.WebhookEnvVar)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func (n *Notifier) resolveWebhook(ctx context.Context, raw string) (string, error) {
	if !secrets.IsReference(raw) {
		return raw, nil
	}
	if n.resolver == nil {
		return "", fmt.Errorf("%w: no resolver for %s", secrets.ErrResolve, raw)
	}
	url, err := n.resolver.Resolve(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("resolve webhook URL: %w", err)
	}
	return url, nil
}
