package core

import (
	"encoding/json"
	"io"
)

type ServiceStatus string

const (
	StatusHealthy  ServiceStatus = "HEALTHY"
	StatusDegraded ServiceStatus = "DEGRADED"
	StatusUnknown  ServiceStatus = "UNKNOWN"
)

// Optional plugin interfaces used by Describe.
type (
	Describer interface {
		Description() string
	}
	StatusReporter interface {
		Status() ServiceStatus
	}
	ConfigProvider interface {
		Config() any
	}
)

type PluginInfo struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Status       ServiceStatus `json:"status"`
	Capabilities []Capability  `json:"capabilities,omitempty"`
	Config       any           `json:"config,omitempty"`
}

// Describe lists the registered plugins. Secrets in plugin config are
// redacted by their own JSON encoding.
func (m *Manager) Describe(includeConfig bool) []PluginInfo {
	out := make([]PluginInfo, 0, len(m.plugins))
	for _, p := range m.plugins {
		out = append(out, buildPluginInfo(p, includeConfig))
	}
	return out
}

// WriteDescription encodes Describe as indented JSON.
func (m *Manager) WriteDescription(w io.Writer, includeConfig bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m.Describe(includeConfig))
}

func buildPluginInfo(p Plugin, includeConfig bool) PluginInfo {
	info := PluginInfo{Name: p.Name(), Status: StatusUnknown}
	if d, ok := p.(Describer); ok {
		info.Description = d.Description()
	}
	if s, ok := p.(StatusReporter); ok {
		info.Status = s.Status()
	}
	if c, ok := p.(CapabilityProvider); ok {
		info.Capabilities = c.Capabilities()
	}
	if includeConfig {
		if cfg, ok := p.(ConfigProvider); ok {
			info.Config = cfg.Config()
		}
	}
	return info
}
