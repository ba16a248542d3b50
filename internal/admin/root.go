// Package admin implements the legisbase-admin command line: offline bill
// import and export, catalog queries, and lookup statistics.
package admin

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"legisbase/internal/backend"
	"legisbase/internal/config"
)

// Exit codes for admin commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the command ran and the answer is negative, e.g. no such bill
	ExitCommandError = 2 // bad input or an unusable backend
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

func commandError(format string, args ...any) error {
	return &ExitError{Code: ExitCommandError, Err: fmt.Errorf(format, args...)}
}

// Deps are the collaborators the commands need. Tests replace them.
type Deps struct {
	LoadConfig func() (*config.Config, error)
	Factory    backend.Factory
	Logger     *slog.Logger
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Backend  string
	SeedFile string
	DBPath   string
	Format   string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for legisbase-admin.
func NewRootCommand(deps Deps) *cobra.Command {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Factory == nil {
		deps.Factory = backend.NewFactory(deps.Logger)
	}
	if deps.LoadConfig == nil {
		deps.LoadConfig = config.Load
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "legisbase-admin",
		Short: "Administer the legislative bill catalog",
		Long: `Offline administration for legisbase.

Imports bills into the sqlite database, exports the configured source as
YAML, queries the catalog the way the API does, and reports lookup
statistics recorded by the worker.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return commandError("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "bill source (memory|sqlite|sheets), overrides DATA_BACKEND")
	cmd.PersistentFlags().StringVar(&opts.SeedFile, "seed-file", "", "YAML seed for the memory backend, overrides SEED_FILE")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "sqlite database path, overrides SQLITE_DB_PATH")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	app := &app{deps: deps, opts: opts}
	cmd.AddCommand(newImportCommand(app))
	cmd.AddCommand(newExportCommand(app))
	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newShowCommand(app))
	cmd.AddCommand(newStatsCommand(app))
	return cmd
}

// app resolves configuration once flags are parsed.
type app struct {
	deps Deps
	opts *RootOptions
}

func (a *app) config() (*config.Config, error) {
	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return nil, commandError("load configuration: %w", err)
	}
	if a.opts.Backend != "" {
		cfg.DataBackend = a.opts.Backend
	}
	if a.opts.SeedFile != "" {
		cfg.SeedFile = a.opts.SeedFile
	}
	if a.opts.DBPath != "" {
		cfg.SQLiteDBPath = a.opts.DBPath
	}
	return cfg, nil
}

func (a *app) backendConfig() (backend.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return backend.Config{}, err
	}
	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return backend.Config{}, commandError("%w", err)
	}
	return bc, nil
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
