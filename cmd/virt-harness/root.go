package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/jzelinskie/cobrautil/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kubev2v/virt-harness/internal/config"
)

const envPrefix = "VIRT_HARNESS"

func NewRootCommand() *cobra.Command {
	cfg := config.NewConfigurationWithOptionsAndDefaults()
	var (
		configFile string
		noColor    bool
	)

	root := &cobra.Command{
		Use:   "virt-harness",
		Short: "Run guestfish, virsh and virt-v2v checkpoints and keep their history",
		Long: `virt-harness drives the libguestfs and libvirt command line tools through
named checkpoints. Each run gets a fresh disk image fixture, its commands and
assertions are logged, and the verdict is stored for later queries.

Every flag can also be set through the environment, e.g. VIRT_HARNESS_LOG_LEVEL,
or in the file given with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: cobrautil.CommandStack(
			cobrautil.SyncViperPreRunE(envPrefix),
			func(cmd *cobra.Command, _ []string) error {
				return loadConfigFile(cmd.Flags(), configFile)
			},
			func(cmd *cobra.Command, _ []string) error {
				if noColor {
					color.NoColor = true
				}
				if err := setupLogging(cfg.LogLevel, cfg.LogFormat); err != nil {
					return err
				}
				zap.S().Debugw("configuration loaded", "config", cfg.DebugMap())
				return nil
			},
		),
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}

	fs := root.PersistentFlags()
	fs.StringVar(&configFile, "config", "", "YAML file with flag values, keyed by flag name")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored verdicts")
	registerFlags(fs, cfg)

	root.AddCommand(
		newRunCommand(cfg),
		newCheckpointsCommand(),
		newRunsCommand(cfg),
		newExportCommand(cfg),
		newServeCommand(cfg),
		newVersionCommand(),
	)
	return root
}

func registerFlags(fs *pflag.FlagSet, cfg *config.Configuration) {
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (console, json)")

	fs.IntVar(&cfg.Harness.NumWorkers, "workers", cfg.Harness.NumWorkers, "Scenarios run in parallel")
	fs.StringVar(&cfg.Harness.DataFolder, "data-folder", cfg.Harness.DataFolder, "Folder of the run database; runs are kept in memory when empty")
	fs.StringVar(&cfg.Harness.WorkDir, "work-dir", cfg.Harness.WorkDir, "Parent of the per run scratch directories (default: system temp dir)")
	fs.DurationVar(&cfg.Harness.CommandTimeout, "command-timeout", cfg.Harness.CommandTimeout, "Timeout of one-shot commands")
	fs.DurationVar(&cfg.Harness.SessionTimeout, "session-timeout", cfg.Harness.SessionTimeout, "Timeout of one interactive command")
	fs.DurationVar(&cfg.Harness.ScenarioTimeout, "scenario-timeout", cfg.Harness.ScenarioTimeout, "Timeout of a scenario without its own")

	fs.StringVar(&cfg.Tools.Guestfish, "guestfish", cfg.Tools.Guestfish, "guestfish binary")
	fs.StringVar(&cfg.Tools.Virsh, "virsh", cfg.Tools.Virsh, "virsh binary")
	fs.StringVar(&cfg.Tools.VirshURI, "virsh-uri", cfg.Tools.VirshURI, "libvirt connection URI")
	fs.StringVar(&cfg.Tools.QemuImg, "qemu-img", cfg.Tools.QemuImg, "qemu-img binary")
	fs.StringVar(&cfg.Tools.V2V, "virt-v2v", cfg.Tools.V2V, "virt-v2v binary")
	fs.StringVar(&cfg.Tools.Nbdkit, "nbdkit", cfg.Tools.Nbdkit, "nbdkit binary")
	fs.StringVar(&cfg.Libguestfs.Backend, "libguestfs-backend", cfg.Libguestfs.Backend, "LIBGUESTFS_BACKEND for guestfish sessions")

	fs.StringVar(&cfg.VSphere.URL, "vsphere-url", cfg.VSphere.URL, "vCenter URL; vSphere checkpoints skip when empty")
	fs.StringVar(&cfg.VSphere.Username, "vsphere-username", cfg.VSphere.Username, "vCenter user")
	fs.StringVar(&cfg.VSphere.Password, "vsphere-password", cfg.VSphere.Password, "vCenter password")
	fs.BoolVar(&cfg.VSphere.Insecure, "vsphere-insecure", cfg.VSphere.Insecure, "Skip vCenter certificate verification")
	fs.StringVar(&cfg.VSphere.Datacenter, "vsphere-datacenter", cfg.VSphere.Datacenter, "vCenter datacenter")
	fs.StringVar(&cfg.VSphere.SourceURI, "vsphere-source-uri", cfg.VSphere.SourceURI, "virt-v2v input URI (-ic)")

	fs.IntVar(&cfg.Server.HTTPPort, "http-port", cfg.Server.HTTPPort, "Port of the run history API")
	fs.StringVar(&cfg.Server.ServerMode, "server-mode", cfg.Server.ServerMode, "Server mode (dev, prod)")
}

// loadConfigFile sets every flag still unset from the config file. Flags
// given on the command line or through the environment win.
func loadConfigFile(fs *pflag.FlagSet, path string) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil || f.Changed || !v.IsSet(f.Name) {
			return
		}
		if setErr := fs.Set(f.Name, v.GetString(f.Name)); setErr != nil {
			err = fmt.Errorf("invalid value for %s in %s: %w", f.Name, path, setErr)
		}
	})
	return err
}

func setupLogging(level, format string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var zc zap.Config
	switch format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
	default:
		return fmt.Errorf("invalid log format %q: must be console or json", format)
	}
	zc.Level = lvl
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	logger, err := zc.Build()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)
	return nil
}
