// Package cli implements the gigsafe command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gigsafe/internal/config"
	"gigsafe/internal/content"
	"gigsafe/internal/meta"
	"gigsafe/internal/metrics"
	"gigsafe/internal/repository/sqlite"
	"gigsafe/internal/safe"
	"gigsafe/internal/service"
)

// Exit codes
const (
	exitSuccess   = 0
	exitUserError = 1
)

// app holds global flag values and the state built from them
type app struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCmd creates the top-level "gigsafe" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gigsafe",
		Short: "Content and marketplace service that never renders an empty field",
		Long: "gigsafe imports posts and gigs from JSON or YAML, normalizes every field\n" +
			"against a registry of defaults and serves them over HTTP with page metadata.",
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search $GIGSAFE_CONFIG, ./gigsafe.yaml, ~/.config/gigsafe)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newNormalizeCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitUserError)
	}
	os.Exit(exitSuccess)
}

// load reads the configuration and builds the logger. It is called by the
// subcommands that need them, so "config init" works without a valid file.
func (a *app) load() error {
	if a.cfg != nil {
		return nil
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, _, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, _, err = config.Load()
	}
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, a.debug)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newLogger builds a production logger, or a development one when the
// config or --debug asks for it.
func newLogger(lc config.LogConfig, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if lc.Dev || debug {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownLogLevel, lc.Level)
	}
	if debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// stack is the storage and service graph shared by the subcommands
type stack struct {
	repo    *sqlite.Repository
	bus     *service.EventBus
	content *service.ContentService
	gigs    *service.GigService
	metrics *metrics.Metrics
}

// newNormalizer builds the record normalizer the config describes
func (a *app) newNormalizer(m *metrics.Metrics) *content.Normalizer {
	var observer safe.FallbackObserver
	if m != nil {
		observer = m
	}
	return content.NewNormalizer(safe.New(a.cfg.SafeDefaults(), observer), a.cfg.Site.DefaultLocale)
}

// openStack opens the database and wires the services. A nil m records to
// a private registry.
func (a *app) openStack(m *metrics.Metrics) (*stack, error) {
	if m == nil {
		m = metrics.NewWithRegistry(prometheus.NewRegistry())
	}

	repo, err := sqlite.New(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	builder := meta.NewBuilder(a.cfg.SiteInfo(), a.cfg.SafeDefaults())
	bus := service.NewEventBus()

	return &stack{
		repo:    repo,
		bus:     bus,
		content: service.NewContentService(repo, a.newNormalizer(m), builder, bus, m, a.logger),
		gigs:    service.NewGigService(repo, builder, a.logger),
		metrics: m,
	}, nil
}

func (s *stack) Close() error {
	return s.repo.Close()
}
