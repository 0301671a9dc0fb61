package core

import (
	"context"

	"gopkg.in/yaml.v3"
)

// A module opts into each lifecycle step by implementing the matching
// interface. The App calls them in this order: Configure, Provision,
// Validate for every module in load order, then Start, and Stop in
// reverse on shutdown.

// Configurable decodes the module's section of the modules: map.
type Configurable interface {
	Configure(node *yaml.Node) error
}

// Provisioner opens resources and publishes services on the AppContext.
type Provisioner interface {
	Provision(ctx *AppContext) error
}

// Validator checks the provisioned module. It must not have side effects.
type Validator interface {
	Validate() error
}

// Starter begins background work (listeners, schedulers, watchers).
type Starter interface {
	Start() error
}

// Stopper releases what Start or Provision acquired.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Pinger is implemented by services that can report their health, such
// as the conversation store.
type Pinger interface {
	Ping(ctx context.Context) error
}
