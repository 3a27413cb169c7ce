package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aitch25/lib-mysqludf-str/internal/config"
	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// RootOptions holds global flags for all commands, plus the configuration
// and logger they resolve to.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to a CUE config file; empty uses defaults

	cfg    *config.Config
	logger *zap.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the strudf CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "strudf",
		Short: "strudf - bounded string functions",
		Long: `Bounded string and byte functions in the lib_mysqludf_str family:
number words, ROT13, shuffling, random bytes, translation, case folding and XOR.

Functions can be evaluated directly, queried through SQLite, applied to a
stream, or checked against YAML conformance suites.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logging)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "CUE config file")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewInfoCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewPipeCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// load resolves the configuration and the logger once. Subcommands call it
// too, so that they work when constructed without the root command.
func (o *RootOptions) load() error {
	if o.cfg == nil {
		cfg := config.Default()
		if o.Config != "" {
			loaded, err := config.Load(o.Config)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			cfg = *loaded
		}
		o.cfg = &cfg
	}

	if o.logger == nil {
		logger, err := newLogger(o.cfg.Log.Level, o.Verbose)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to initialize logger", err)
		}
		o.logger = logger
	}
	return nil
}

// newLogger builds a production logger writing to stderr. Verbose forces
// debug level.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// registry returns the built-in functions enabled by the configuration.
func (o *RootOptions) registry() (*udf.Registry, error) {
	reg := udf.Builtin(
		udf.WithLogger(o.logger),
		udf.WithMaxRandomBytes(o.cfg.MaxRandomBytes),
	)
	sub, err := reg.Subset(o.cfg.Functions)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid functions in config", err)
	}
	return sub, nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
