package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/haukened/commentguard/internal/moderation/common/clock"
	"github.com/haukened/commentguard/internal/moderation/common/log"
	"github.com/haukened/commentguard/internal/moderation/config"
	"github.com/haukened/commentguard/internal/moderation/domain"
	"github.com/haukened/commentguard/internal/moderation/gateways/remote"
	"github.com/haukened/commentguard/internal/moderation/gateways/transport"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist/bloom"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist/bolt"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist/lru"
	"github.com/haukened/commentguard/internal/moderation/repos/denylist/memory"
	"github.com/haukened/commentguard/internal/moderation/repos/policy"
	"github.com/haukened/commentguard/internal/moderation/sanitize"
	"github.com/haukened/commentguard/internal/moderation/services/moderator"
)

const (
	// Version information
	version = "0.1.0-dev"
	appName = "commentguardd"
)

// Application holds all the components of the moderation server
type Application struct {
	config    *config.AppConfig
	transport *transport.HTTPTransport
	service   *moderator.Service
	store     denylist.Store
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	err = log.Configure(cfg.Env, cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logging configuration error: %v\n", err)
		os.Exit(1)
	}

	log.Info(map[string]any{
		"app":            appName,
		"version":        version,
		"env":            cfg.Env,
		"log_level":      cfg.Log.Level,
		"listen":         cfg.Server.Listen,
		"remote_enabled": cfg.Remote.Enabled,
		"policy_file":    cfg.Denylist.PolicyFile,
		"denylist_db":    cfg.Denylist.DB,
	}, "Starting commentguard server")

	app, err := buildApplication(cfg)
	if err != nil {
		log.Fatal(map[string]any{"error": err}, "Failed to build application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatal(map[string]any{"error": err}, "Server failed")
	}

	log.Info(nil, "commentguard server stopped gracefully")
}

// buildApplication constructs all components and wires them together
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	clk := &clock.RealClock{}
	logger := log.GetLogger()

	repos, err := buildRepositories(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build repositories: %w", err)
	}

	gws, err := buildGateways(cfg)
	if err != nil {
		_ = repos.store.Close()
		return nil, fmt.Errorf("failed to build gateways: %w", err)
	}

	svc, err := buildService(cfg, repos, gws, logger)
	if err != nil {
		_ = repos.store.Close()
		return nil, fmt.Errorf("failed to build service: %w", err)
	}

	return &Application{
		config:    cfg,
		transport: transport.NewHTTPTransport(cfg.Server.Listen, logger),
		service:   svc,
		store:     repos.store,
	}, nil
}

// repositories holds all repository implementations
type repositories struct {
	denylist denylist.Repository
	store    denylist.Store
	rules    []domain.DenyRule
}

// gateways holds all gateway implementations. Both are nil when the remote
// classifier is disabled; moderation is nil when no API key is configured.
type gateways struct {
	moderation moderator.ModerationGateway
	factory    moderator.GatewayFactory
}

// buildRepositories loads the policy and indexes its words into the denylist.
func buildRepositories(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (*repositories, error) {
	rules, err := policy.NewLoader(clk, logger).Load(cfg.Denylist.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	var store denylist.Store
	if cfg.Denylist.DB != "" {
		store, err = bolt.New(cfg.Denylist.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to open denylist db: %w", err)
		}
	} else {
		store = memory.New()
	}

	cache, err := lru.New(cfg.Denylist.CacheSize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create match cache: %w", err)
	}

	repo := denylist.NewRepository(store, cache, bloom.NewFactory(), cfg.Denylist.FPRate, logger)
	now := clk.Now().Unix()
	if err := repo.Load(rules, uint64(now), now); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load denylist: %w", err)
	}

	words, patterns := policy.Split(rules)
	log.Info(map[string]any{
		"words":      len(words),
		"patterns":   len(patterns),
		"persistent": cfg.Denylist.DB != "",
		"cache_size": cfg.Denylist.CacheSize,
	}, "Denylist initialized")

	return &repositories{denylist: repo, store: store, rules: rules}, nil
}

// buildGateways creates the remote moderation client when enabled.
func buildGateways(cfg *config.AppConfig) (*gateways, error) {
	if !cfg.Remote.Enabled {
		return &gateways{}, nil
	}

	base := remote.Options{
		Endpoint: cfg.Remote.Endpoint,
		Timeout:  cfg.Remote.Timeout,
	}
	gws := &gateways{factory: remote.Factory(base)}

	if cfg.Remote.APIKey != "" {
		opts := base
		opts.APIKey = cfg.Remote.APIKey
		client, err := remote.NewClient(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create moderation client: %w", err)
		}
		gws.moderation = client
	}

	log.Info(map[string]any{
		"endpoint":    cfg.Remote.Endpoint,
		"timeout":     cfg.Remote.Timeout.String(),
		"default_key": gws.moderation != nil,
	}, "Remote moderation configured")

	return gws, nil
}

// buildService chooses the classifier: remote with heuristic fallback when
// enabled, otherwise the heuristic alone.
func buildService(cfg *config.AppConfig, repos *repositories, gws *gateways, logger log.Logger) (*moderator.Service, error) {
	heuristic, err := moderator.NewHeuristicFromRules(repos.denylist, repos.rules)
	if err != nil {
		return nil, err
	}

	opts := moderator.ServiceOptions{
		Classifier: moderator.Local{Heuristic: heuristic},
		Sanitizer:  sanitize.New(cfg.Sanitize.StripMarkup),
		Logger:     logger,
	}

	if gws.factory != nil {
		r, err := moderator.NewRemote(moderator.RemoteOptions{
			Gateway:    gws.moderation,
			NewGateway: gws.factory,
			Fallback:   heuristic,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		opts.Classifier = r
		opts.Keyed = r
	}

	return moderator.NewService(opts)
}

// Run starts the HTTP transport and blocks until ctx is cancelled.
func (app *Application) Run(ctx context.Context) error {
	if err := app.transport.Start(ctx, app.service); err != nil {
		_ = app.store.Close()
		return fmt.Errorf("failed to start HTTP transport: %w", err)
	}

	log.Info(map[string]any{
		"address":   app.transport.Address(),
		"transport": "HTTP",
	}, "commentguard server started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		log.Info(nil, "Shutdown initiated")
		return app.transport.Stop()
	})

	err := g.Wait()
	if cerr := app.store.Close(); cerr != nil {
		log.Warn(map[string]any{"error": cerr}, "Error closing denylist store")
	}
	if err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	log.Info(nil, "Graceful shutdown completed")
	return nil
}
