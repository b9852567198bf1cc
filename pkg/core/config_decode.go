package core

import (
	"github.com/mywio/release-notifier/pkg/config"
	"gopkg.in/yaml.v3"
)

// DecodeSection decodes the named section of cfg into out through a YAML
// round trip, so yaml struct tags apply. It reports whether the section
// exists; a missing or empty section leaves out untouched.
func DecodeSection(cfg config.ConfigMap, name string, out any) (bool, error) {
	section, ok := cfg[name]
	if !ok || len(section) == 0 {
		return ok, nil
	}
	data, err := yaml.Marshal(section)
	if err != nil {
		return true, err
	}
	return true, yaml.Unmarshal(data, out)
}
