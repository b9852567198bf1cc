package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/mywio/release-notifier/pkg/config"
	"github.com/mywio/release-notifier/pkg/secrets"
)

// Step names a release lifecycle hook.
type Step string

const (
	StepVerifyConditions Step = "verifyConditions"
	StepSuccess          Step = "success"
	StepFail             Step = "fail"
)

func (s Step) Valid() bool {
	switch s {
	case StepVerifyConditions, StepSuccess, StepFail:
		return true
	}
	return false
}

// Registry is what a plugin can reach during Init.
type Registry interface {
	GetConfig() config.ConfigMap
	GetHTTPClient() *http.Client
	LookupEnv(key string) (string, bool)
	GetSecretResolver() secrets.Resolver
}

// Plugin is a release lifecycle plugin. Each hook is invoked at most once
// per release event.
type Plugin interface {
	Name() string
	Init(ctx context.Context, logger *slog.Logger, registry Registry) error
	VerifyConditions(ctx context.Context, ec EventContext) error
	Success(ctx context.Context, ec EventContext) error
	Fail(ctx context.Context, ec EventContext) error
}

type Manager struct {
	plugins    []Plugin
	logger     *slog.Logger
	config     config.ConfigMap
	httpClient *http.Client
	lookupEnv  config.LookupFunc
	resolver   secrets.Resolver
}

func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		logger:    logger,
		config:    config.ConfigMap{},
		lookupEnv: os.LookupEnv,
	}
}

func (m *Manager) Register(p Plugin) {
	m.plugins = append(m.plugins, p)
}

func (m *Manager) Plugins() []Plugin {
	return append([]Plugin(nil), m.plugins...)
}

func (m *Manager) SetConfig(cfg config.ConfigMap) {
	if cfg == nil {
		cfg = config.ConfigMap{}
	}
	m.config = cfg
}

func (m *Manager) GetConfig() config.ConfigMap { return m.config }

func (m *Manager) SetHTTPClient(c *http.Client) { m.httpClient = c }

func (m *Manager) GetHTTPClient() *http.Client {
	if m.httpClient == nil {
		return http.DefaultClient
	}
	return m.httpClient
}

// SetLookupEnv replaces the environment lookup, os.LookupEnv by default.
func (m *Manager) SetLookupEnv(fn config.LookupFunc) {
	if fn == nil {
		fn = os.LookupEnv
	}
	m.lookupEnv = fn
}

func (m *Manager) LookupEnv(key string) (string, bool) { return m.lookupEnv(key) }

func (m *Manager) SetSecretResolver(r secrets.Resolver) { m.resolver = r }

func (m *Manager) GetSecretResolver() secrets.Resolver { return m.resolver }

// Init initializes every plugin in registration order.
func (m *Manager) Init(ctx context.Context) error {
	for _, p := range m.plugins {
		if err := p.Init(ctx, m.logger.With("plugin", p.Name()), m); err != nil {
			return fmt.Errorf("init plugin %s: %w", p.Name(), err)
		}
	}
	return nil
}

// Run invokes step on every plugin in registration order and stops at the
// first error.
func (m *Manager) Run(ctx context.Context, step Step, ec EventContext) error {
	if !step.Valid() {
		return fmt.Errorf("unknown step %q", step)
	}
	for _, p := range m.plugins {
		pec := ec
		pec.Logger = ec.Log().With("plugin", p.Name())

		var err error
		switch step {
		case StepVerifyConditions:
			err = p.VerifyConditions(ctx, pec)
		case StepSuccess:
			err = p.Success(ctx, pec)
		case StepFail:
			err = p.Fail(ctx, pec)
		}
		if err != nil {
			return fmt.Errorf("%s %s: %w", p.Name(), step, err)
		}
	}
	return nil
}
