// Package cli implements the stamps command line.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mnav0/major-studio-1/pkg/stamps"
	"github.com/mnav0/major-studio-1/pkg/stamps/config"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	configPath string
	dbPath     string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
	comp   *config.Components
	coll   *stamps.Collection
}

// Execute runs the command line against os.Args.
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes one invocation with the given arguments and writers.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stamps",
		Short: "Explore the national postage stamp collection by decade and theme",
		Long: `Fetches stamp records from the Smithsonian Open Access API, tags each
stamp with a historical theme, and summarizes the collection decade by decade.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.open,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "configuration file (defaults apply when empty)")
	flags.StringVar(&a.dbPath, "db", "", "stamp database path, overrides store.path")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")

	root.AddCommand(
		a.fetchCommand(),
		a.importCommand(),
		a.decadesCommand(),
		a.groupsCommand(),
		a.explainCommand(),
		a.colorsCommand(),
	)
	return root
}

// open loads configuration and builds the collection.
func (a *app) open(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			return err
		}
	}
	if a.dbPath != "" {
		cfg.Store.Path = a.dbPath
	}
	a.cfg = cfg

	logger, err := newLogger(a.verbose)
	if err != nil {
		return err
	}
	a.logger = logger

	loader := config.Loader{Config: cfg, Logger: logger}
	if a.comp, err = loader.Load(cmd.Context()); err != nil {
		return err
	}
	a.coll, err = stamps.FromComponents(a.comp, cfg.Filter.ColorThreshold, logger)
	return err
}

func (a *app) close() error {
	var errs []error
	if a.comp != nil {
		errs = append(errs, a.comp.Close())
	}
	if a.logger != nil {
		// stderr cannot always be synced; ignore that error
		_ = a.logger.Sync()
	}
	return errors.Join(errs...)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
