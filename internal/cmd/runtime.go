package cmd

import (
	"fmt"

	"github.com/codyrobertson/critical-claude-sub003/internal/config"
	"github.com/codyrobertson/critical-claude-sub003/internal/conflict"
	"github.com/codyrobertson/critical-claude-sub003/internal/event"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
	"github.com/codyrobertson/critical-claude-sub003/internal/peer"
	"github.com/codyrobertson/critical-claude-sub003/internal/store"
)

// runtime bundles the components every command needs: config, logger,
// store, adapter, conflict registry and event bus, all built from the
// loaded configuration.
type runtime struct {
	cfg      *config.Config
	log      *logging.Logger
	store    store.Store
	adapter  *peer.Adapter
	registry *conflict.Registry
	bus      *event.Bus
	dataDir  string
}

// newRuntime loads the configuration and wires the component graph.
// Callers must close() the runtime to persist the conflict registry and
// flush the log file.
func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	dataDir := cfg.Storage.ResolveRoot(store.DefaultRoot())

	logDir := ""
	if cfg.Logging.Enabled {
		logDir = cfg.Logging.Dir
		if logDir == "" {
			logDir = dataDir
		}
	}
	log, err := logging.NewLogger(logDir, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	fs, err := store.NewFileStore(dataDir)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to open task store: %w", err)
	}

	registry, err := conflict.LoadRegistry(dataDir)
	if err != nil {
		log.Warn("could not load conflict registry, starting empty", "error", err)
		registry = conflict.NewRegistry()
	}

	return &runtime{
		cfg:      cfg,
		log:      log,
		store:    fs,
		adapter:  buildAdapter(cfg, log),
		registry: registry,
		bus:      event.NewBus(),
		dataDir:  dataDir,
	}, nil
}

// close persists the conflict registry and releases the log file.
func (rt *runtime) close() {
	if err := rt.registry.Save(rt.dataDir); err != nil {
		rt.log.Error("failed to save conflict registry", "error", err)
	}
	rt.log.Close()
}

// buildAdapter assembles the strategy chain in fallback order. The
// direct strategy has no tool binding in CLI context and probes as
// unavailable; it stays in the chain so diagnostics report it.
func buildAdapter(cfg *config.Config, log *logging.Logger) *peer.Adapter {
	strategies := []peer.Strategy{
		peer.NewDirectStrategy(nil, cfg.Adapter.DirectTimeout()),
		peer.NewFileStrategy(cfg.Adapter.HandoffWritePaths, cfg.Adapter.HandoffReadPaths),
	}
	if len(cfg.Adapter.ProcessCommand) > 0 {
		strategies = append(strategies, peer.NewProcessStrategy(cfg.Adapter.ProcessCommand, cfg.Adapter.ProcessTimeout()))
	}

	return peer.NewAdapter(log, strategies...)
}

// buildPolicy converts the configured resolver policy into the conflict
// package's types. Validation already guaranteed the names are known.
func buildPolicy(cfg *config.Config) conflict.Policy {
	policy := conflict.Policy{
		DefaultStrategy: conflict.Strategy(cfg.Resolver.DefaultStrategy),
	}
	for _, t := range cfg.Resolver.AutoResolveTypes {
		policy.AutoResolveTypes = append(policy.AutoResolveTypes, conflict.Type(t))
	}
	for _, t := range cfg.Resolver.ManualReviewRequired {
		policy.ManualReviewRequired = append(policy.ManualReviewRequired, conflict.Type(t))
	}
	return policy
}
