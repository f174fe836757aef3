package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newLoadCmd(opts *Options) *cobra.Command {
	var replace bool
	cmd := &cobra.Command{
		Use:     "load <identifier>",
		Short:   "Load a model into the daemon's registry",
		Example: "  modelcore load gpt-mini\n  modelcore load gpt-mini --replace",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := NewClient(opts.Addr).Load(cmd.Context(), args[0], replace)
			if err != nil {
				return err
			}
			fmt.Fprintf(opts.Stdout, "loaded %s (%s)\n", m.Name, m.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&replace, "replace", false, "Replace a model already loaded under the same name")
	return cmd
}

func newUnloadCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "unload <name>",
		Short: "Unload a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := NewClient(opts.Addr).Unload(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(opts.Stdout, "unloaded %s\n", args[0])
			return nil
		},
	}
}

func newInferCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "infer <model> [prompt...]",
		Short:   "Dispatch an inference request",
		Example: "  modelcore infer gpt-mini why is the sky blue",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := NewClient(opts.Addr).Infer(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.Stdout, r.Output)
			return nil
		},
	}
}

func newModelsCmd(opts *Options) *cobra.Command {
	var human bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List loaded models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := NewClient(opts.Addr)
			if !human {
				s, err := c.Proc(cmd.Context(), "models")
				if err != nil {
					return err
				}
				fmt.Fprint(opts.Stdout, s)
				return nil
			}
			r, err := c.Models(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(opts.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tLOADED\tINFERENCES")
			for _, m := range r.Models {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, humanize.Bytes(m.Size),
					humanize.Time(time.Unix(m.LoadedAt, 0)), humanize.Comma(int64(m.InferenceCount)))
			}
			fmt.Fprintf(tw, "TOTAL\t%s\t\t\n", humanize.Bytes(r.TotalBytes))
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&human, "human", false, "Human readable sizes and times")
	return cmd
}

// newProcCmd prints one /proc/ai file verbatim.
func newProcCmd(opts *Options, use, short, file string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewClient(opts.Addr).Proc(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprint(opts.Stdout, s)
			return nil
		},
	}
}
