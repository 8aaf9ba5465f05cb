package ui

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/indico/internal/config"
	"github.com/javiermolinar/indico/internal/db"
	"github.com/javiermolinar/indico/internal/debuglog"
	"github.com/javiermolinar/indico/internal/engine"
	"github.com/javiermolinar/indico/internal/history"
	"github.com/javiermolinar/indico/internal/indico"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// ErrMissingToken is returned by commands that talk to Indico without a token.
var ErrMissingToken = errors.New("no Indico API token configured: set INDICO_TOKEN or run 'indico config'")

// App holds the CLI application state.
type App struct {
	config     *config.Config
	root       *cobra.Command
	debug      bool   // Enable debug logging
	env        string // Environment override
	configPath string // Config file override
	logger     *debuglog.Logger

	backend engine.Backend     // nil means an Indico client built from config
	journal history.Repository // nil means the configured database
	ownsDB  bool
}

// Option configures an App.
type Option func(*App)

// WithBackend replaces the Indico client.
func WithBackend(b engine.Backend) Option {
	return func(a *App) {
		a.backend = b
	}
}

// WithJournal replaces the swap journal database.
func WithJournal(r history.Repository) Option {
	return func(a *App) {
		a.journal = r
	}
}

// NewApp creates a new CLI application. A nil config is loaded from
// --config or the default path when a command runs.
func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{config: cfg, logger: debuglog.Discard()}
	for _, opt := range opts {
		opt(a)
	}

	a.root = &cobra.Command{
		Use:   "indico",
		Short: "Check and rearrange Indico conference timetables",
		Long: `indico fetches a conference timetable from an Indico instance,
reports overlapping entries and swaps the time slots of two entries.

Swaps are validated against the whole timetable before anything is sent
to Indico, and a failed second update is rolled back.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	// Add global flags
	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging (logs to "+debuglog.Path+")")
	a.root.PersistentFlags().StringVar(&a.env, "env", "", "Indico environment (prod, stage, local)")
	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultConfigPath()+")")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.overlapCmd())
	a.root.AddCommand(a.swapCmd())
	a.root.AddCommand(a.timetableCmd())
	a.root.AddCommand(a.historyCmd())
	a.root.AddCommand(a.browseCmd())

	return a
}

// setup loads configuration and opens the debug log before any command runs.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.config == nil || cmd.Flags().Changed("config") {
		path := a.configPath
		if path == "" {
			path = config.DefaultConfigPath()
		}
		cfg, err := config.LoadFrom(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		a.config = cfg
	}

	if a.env != "" {
		if err := a.config.UseEnvironment(a.env); err != nil {
			return err
		}
	}

	applyColorMode(a.config.UI.Color)

	logger, err := debuglog.Open(a.debug, "")
	if err != nil {
		return err
	}
	a.logger = logger
	a.logger.Debug("config loaded", "endpoint", a.config.Endpoint(), "command", cmd.Name())
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "indico %s (commit: %s)\n", Version, Commit)
		},
	}
}

// client returns the Indico backend for the selected environment.
func (a *App) client() (engine.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	if a.config.Indico.Token == "" {
		return nil, ErrMissingToken
	}
	c, err := indico.New(a.config.Endpoint(), a.config.Indico.Token,
		indico.WithTimeout(a.config.RequestTimeout()),
		indico.WithLogger(a.logger.Logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Indico client: %w", err)
	}
	a.backend = c
	return c, nil
}

// repo returns the swap journal, opening the database on first use.
func (a *App) repo() (history.Repository, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	store, err := db.New(a.config.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	a.journal = store
	a.ownsDB = true
	return store, nil
}

// engine builds an engine over the Indico backend. withJournal also
// records swaps when the config enables it.
func (a *App) engine(withJournal bool) (*engine.Engine, error) {
	backend, err := a.client()
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{engine.WithLogger(a.logger.Logger)}
	if withJournal && a.config.Swap.Journal {
		journal, err := a.repo()
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithJournal(journal))
	}
	return engine.New(backend, opts...), nil
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	err := a.root.Execute()
	if errors.Is(err, indico.ErrTokenExpired) {
		return fmt.Errorf("%w: create a new API token and update the config", err)
	}
	return err
}

// Close releases the journal database and the debug log.
func (a *App) Close() error {
	var errs []error
	if a.ownsDB && a.journal != nil {
		errs = append(errs, a.journal.Close())
	}
	errs = append(errs, a.logger.Close())
	return errors.Join(errs...)
}
