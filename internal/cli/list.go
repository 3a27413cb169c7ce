package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aitch25/lib-mysqludf-str/internal/udf"
)

// FunctionInfo describes one registered function.
type FunctionInfo struct {
	Name          string `json:"name"`
	Signature     string `json:"signature"`
	Returns       string `json:"returns"`
	Deterministic bool   `json:"deterministic"`
	Summary       string `json:"summary,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the enabled functions",
		Long: `List the enabled functions with their signatures.

Square brackets mark optional arguments and CONST marks arguments that
must be the same for every row of a query.

Examples:
  strudf list
  strudf list --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listFunctions(rootOpts, cmd)
		},
	}
}

func listFunctions(opts *RootOptions, cmd *cobra.Command) error {
	if err := opts.load(); err != nil {
		return err
	}
	reg, err := opts.registry()
	if err != nil {
		return err
	}

	fns := reg.List()
	infos := make([]FunctionInfo, 0, len(fns))
	for _, fn := range fns {
		info := FunctionInfo{
			Name:          fn.Name(),
			Signature:     udf.Signature(fn),
			Returns:       fn.Returns().String(),
			Deterministic: udf.Deterministic(fn),
		}
		if s, ok := fn.(udf.Summarizer); ok {
			info.Summary = s.Summary()
		}
		infos = append(infos, info)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Success(infos)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\n", info.Signature, info.Summary)
	}
	return tw.Flush()
}
