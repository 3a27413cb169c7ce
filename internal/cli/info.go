package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aitch25/lib-mysqludf-str/internal/sqlhost"
	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// InfoResult is the payload of the info command.
type InfoResult struct {
	Info           string `json:"info"`
	Version        string `json:"version"`
	Functions      int    `json:"functions"`
	MaxRandomBytes int    `json:"max_random_bytes"`
	SQLiteDriver   string `json:"sqlite_driver"`
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the library version",
		Long: `Print the result of lib_mysqludf_str_info().

With --verbose or --format json, also print the enabled function count,
the str_srand limit and the SQLite driver this binary was built with.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showInfo(rootOpts, cmd)
		},
	}
}

func showInfo(opts *RootOptions, cmd *cobra.Command) error {
	if err := opts.load(); err != nil {
		return err
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	info := udf.Info
	if _, ok := reg.Lookup(udf.NameInfo); ok {
		res, err := udf.NewSession(reg).Eval(udf.NameInfo)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to evaluate "+udf.NameInfo, err)
		}
		info = string(res.Bytes)
	}

	result := InfoResult{
		Info:           info,
		Version:        udf.Version,
		Functions:      reg.Len(),
		MaxRandomBytes: opts.cfg.MaxRandomBytes,
		SQLiteDriver:   sqlhost.DriverType,
	}

	f := opts.formatter(cmd)
	if opts.Format == "json" {
		return f.Success(result)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Info)
	f.VerboseLog("functions: %d", result.Functions)
	f.VerboseLog("max random bytes: %d", result.MaxRandomBytes)
	f.VerboseLog("sqlite driver: %s", result.SQLiteDriver)
	return nil
}
