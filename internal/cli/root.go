package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lazypower/halflife/internal/config"
	"github.com/lazypower/halflife/internal/logging"
)

// app carries what every command needs once the root command has run.
type app struct {
	configPath string
	cfg        config.Config
	log        *slog.Logger
	stderr     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	root := &cobra.Command{
		Use:   "halflife",
		Short: "Track caffeine intake and estimate what is still in your system",
		Long: "halflife logs the drinks you have, models caffeine elimination as " +
			"first-order decay and shows your current level and today's curve.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(a.stderr, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.halflife/config.toml)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newLogCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newRmCmd(a))
	root.AddCommand(newClearCmd(a))
	root.AddCommand(newLevelCmd(a))
	root.AddCommand(newChartCmd(a))
	root.AddCommand(newSettingsCmd(a))
	return root
}

func Execute() error {
	return newRootCmd().Execute()
}
