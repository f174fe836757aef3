package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modelcore/internal/config"
	"modelcore/internal/daemon"
	"modelcore/internal/logging"
)

func newServeCmd(opts *Options) *cobra.Command {
	var (
		cfgPath  string
		grpcAddr string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the registry daemon",
		Example: "  modelcore serve --config /etc/modelcore.yaml\n" +
			"  MODELCORE_ADDR=:9000 modelcore serve",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgPath == "" {
				cfgPath = os.Getenv(config.EnvConfig)
			}
			var cfg config.Config
			if cfgPath != "" {
				c, err := config.Load(cfgPath)
				if err != nil {
					return err
				}
				cfg = c
			}
			cfg = cfg.ApplyEnv(os.Getenv)
			if cmd.Flags().Changed("addr") {
				cfg.Addr = opts.Addr
			}
			if grpcAddr != "" {
				cfg.GRPCAddr = grpcAddr
			}
			cfg = cfg.WithDefaults()

			log, closer, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File}, opts.Stderr)
			if err != nil {
				return err
			}
			defer closer.Close()

			d, err := daemon.New(cfg, log)
			if err != nil {
				return err
			}
			if cfgPath != "" {
				w, err := config.NewWatcher(cfgPath, reloadFunc(d, log), config.WithWatchLogger(log))
				if err != nil {
					return err
				}
				defer w.Close()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return d.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Config file (.yaml/.json/.toml; defaults MODELCORE_CONFIG)")
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", "", "gRPC health listen address")
	return cmd
}

func reloadFunc(d *daemon.Daemon, log zerolog.Logger) func(config.Config, error) {
	return func(c config.Config, err error) {
		if err != nil {
			log.Warn().Err(err).Msg("keeping previous config")
			return
		}
		d.ApplyConfig(c)
	}
}

