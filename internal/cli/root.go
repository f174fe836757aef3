// Package cli implements the modelcore command line: the daemon itself
// (serve) and thin clients for its HTTP surface.
package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"modelcore/internal/config"
)

// DefaultAddr is used when neither --addr nor MODELCORE_ADDR is set.
const DefaultAddr = "127.0.0.1:8080"

// Options carries persistent flags and output streams.
type Options struct {
	Addr   string
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd(&Options{Stdout: os.Stdout, Stderr: os.Stderr}).Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd(opts *Options) *cobra.Command {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	defaultAddr := DefaultAddr
	if v := os.Getenv(config.EnvAddr); v != "" {
		defaultAddr = v
	}

	root := &cobra.Command{
		Use:           "modelcore",
		Short:         "Model registry daemon and client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.PersistentFlags().StringVar(&opts.Addr, "addr", defaultAddr, "Daemon address (defaults MODELCORE_ADDR or "+DefaultAddr+")")

	root.AddCommand(
		newServeCmd(opts),
		newLoadCmd(opts),
		newUnloadCmd(opts),
		newInferCmd(opts),
		newModelsCmd(opts),
		newProcCmd(opts, "memory", "Print total bytes held by loaded models", "memory"),
		newProcCmd(opts, "summary", "Print the most recently loaded model", "model"),
		newProcCmd(opts, "audit", "Print the audit log", "audit.log"),
	)
	return root
}
