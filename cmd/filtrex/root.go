package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/mgomes/filtrex/filtrex"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// app carries the state every subcommand shares once the persistent
// pre-run has loaded the configuration.
type app struct {
	cfgFile string
	cfg     *cliConfig
	logger  *slog.Logger
	engine  *filtrex.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "filtrex",
		Short: "Compile and evaluate filter expressions",
		Long: `filtrex compiles small filter expressions such as

  age >= 18 and status in ("active", "trial")

and evaluates them against JSON or YAML records.

An expression that starts with "-" must follow "--" so it is not read as a
flag:

  filtrex eval --set x=3 -- '-x * 2'`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./filtrex.yaml)")
	flags.Int("max-depth", 0, "maximum expression nesting depth (negative disables the check)")
	flags.Int("max-source-bytes", 0, "maximum expression size in bytes (negative disables the check)")
	flags.StringP("format", "f", "", "output format (text|json)")
	flags.BoolP("verbose", "v", false, "log compilation and evaluation details to stderr")

	_ = root.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return validFormats, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newEvalCmd(a),
		newCheckCmd(a),
		newFilterCmd(a),
		newASTCmd(a),
		newFunctionsCmd(a),
		newREPLCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, used, err := loadConfig(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Verbose)
	if used != "" {
		a.logger.Debug("using config file", slog.String("path", used))
	}
	engine, err := filtrex.NewEngine(filtrex.Config{
		MaxSourceBytes: cfg.MaxSourceBytes,
		MaxDepth:       cfg.MaxDepth,
		Logger:         a.logger,
	})
	if err != nil {
		return err
	}
	a.engine = engine
	a.logger.Debug("engine ready", slog.String("limits", a.engine.ConfigSummary()))
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (a *app) compile(expr string) (*filtrex.Predicate, error) {
	pred, err := a.engine.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile failed: %w", err)
	}
	return pred, nil
}
