package core

// Capability tags what a plugin contributes to a release run.
type Capability string

const (
	CapabilityVerifier Capability = "VERIFIER"
	CapabilityNotifier Capability = "NOTIFIER"
)

// CapabilityProvider is implemented by plugins that advertise capabilities.
type CapabilityProvider interface {
	Capabilities() []Capability
}
