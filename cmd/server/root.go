package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"notekeeper/internal/config"
	"notekeeper/internal/logger"
	"notekeeper/internal/storage"
	"notekeeper/internal/version"
)

// app carries the configuration shared by every subcommand.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

func newRootCommand() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:          "notekeeper",
		Short:        "Local encrypted note keeper",
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default <data-dir>/config.yaml)")
	flags.String("data-dir", "data", "directory holding notes, settings and logs")
	flags.BoolP("debug", "d", false, "enable debug logging")
	flags.String("storage", storage.DriverFile, "storage driver: file or sqlite")

	bindFlags(a.v, flags, map[string]string{
		"data_dir":       "data-dir",
		"debug":          "debug",
		"storage.driver": "storage",
	})

	versionCmd := versionCommand()
	rootCmd.AddCommand(
		a.serveCommand(),
		a.exportCommand(),
		a.importCommand(),
		versionCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == versionCmd.Name() {
			return nil
		}
		cfg, err := config.Load(a.v, a.cfgFile)
		if err != nil {
			return err
		}
		a.cfg = cfg
		return nil
	}

	return rootCmd
}

// bindFlags binds config keys to the flags named in keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("error binding flag %s: %v", name, err))
		}
	}
}

// open initializes logging and the slot store for a subcommand.
func (a *app) open() (*storage.FileSystem, storage.Slots, error) {
	if err := logger.InitLogger(a.cfg.DataDir, a.cfg.Debug); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	fs, err := storage.NewFileSystem(a.cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	slots, err := storage.Open(a.cfg.Storage.Driver, fs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open storage: %w", err)
	}

	zap.L().Debug("Storage opened",
		zap.String("data_dir", a.cfg.DataDir),
		zap.String("driver", a.cfg.Storage.Driver),
	)
	return fs, slots, nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.GetInfo())
		},
	}
}
