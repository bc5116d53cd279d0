/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mpapenbr/kartline/log"
	checkCmd "github.com/mpapenbr/kartline/pkg/cmd/check"
	locateCmd "github.com/mpapenbr/kartline/pkg/cmd/locate"
	minimapCmd "github.com/mpapenbr/kartline/pkg/cmd/minimap"
	replayCmd "github.com/mpapenbr/kartline/pkg/cmd/replay"
	"github.com/mpapenbr/kartline/pkg/cmd/util"
	"github.com/mpapenbr/kartline/pkg/config"
	"github.com/mpapenbr/kartline/version"
)

const envPrefix = "KARTLINE"

var (
	cfgFile   string
	telemetry *config.Telemetry
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "kartline",
	Short:   "Track driveline tools for kart races",
	Long:    ``,
	Version: version.FullVersion,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := setupLogger()
		if err != nil {
			return err
		}
		log.ResetDefault(logger)
		cmd.SetContext(log.AddToContext(cmd.Context(), logger))
		if config.EnableTelemetry {
			if telemetry, err = config.SetupTelemetry(cmd.Context(), os.Stderr); err != nil {
				log.Warn("Could not setup telemetry", log.ErrorField(err))
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if telemetry != nil {
			telemetry.Shutdown(cmd.Context())
		}
		//nolint:errcheck // stderr can't be synced on some systems
		log.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:lll // readability
func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.kartline.yml)")

	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format (json, text)")
	rootCmd.PersistentFlags().StringVar(&config.LogFilter, "log-filter", "",
		"zapfilter rules, e.g. \"*:* -debug:*.loader\"")
	rootCmd.PersistentFlags().BoolVar(&config.EnableTelemetry, "enable-telemetry", false,
		"writes metrics to stderr")

	rootCmd.PersistentFlags().StringSliceVar(&config.DataDirs, "data-dir", []string{"."},
		"directories searched for track files (first match wins)")
	rootCmd.PersistentFlags().Float64Var(&config.MinSpacing, "min-spacing", 1.5,
		"minimum distance between two accepted boundary points")
	rootCmd.PersistentFlags().Float64Var(&config.DisplayWidth, "display-width", 100,
		"minimap width used for the scale factors")
	rootCmd.PersistentFlags().Float64Var(&config.DisplayHeight, "display-height", 100,
		"minimap height used for the scale factors")
	rootCmd.PersistentFlags().BoolVar(&config.Stretch, "stretch", false,
		"scale the minimap axes independently")
	rootCmd.PersistentFlags().IntVar(&config.HeadingWindow, "heading-window", 1,
		"number of heading samples averaged (1 disables smoothing)")
	rootCmd.PersistentFlags().IntVar(&config.SpawnSpacing, "spawn-spacing", 1,
		"driveline indices between two grid positions")
	rootCmd.PersistentFlags().IntVar(&config.Workers, "workers", 4,
		"max number of karts processed in parallel")
	rootCmd.PersistentFlags().IntVar(&config.Laps, "laps", 3,
		"number of laps of a race")
	rootCmd.PersistentFlags().StringVar(&config.PreviewExpiration, "preview-expiration", "5m",
		"duration after which cached track previews are rebuilt")

	// add commands here
	rootCmd.AddCommand(checkCmd.NewCheckCmd())
	rootCmd.AddCommand(locateCmd.NewLocateCmd())
	rootCmd.AddCommand(minimapCmd.NewMinimapCmd())
	rootCmd.AddCommand(replayCmd.NewReplayCmd())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".kartline" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kartline")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindFlags(rootCmd, viper.GetViper())
	for _, cmd := range rootCmd.Commands() {
		bindFlags(cmd, viper.GetViper())
	}
}

func setupLogger() (*log.Logger, error) {
	level := util.ParseLogLevel(config.LogLevel, log.InfoLevel)
	var opts []log.Option
	if config.LogFilter != "" {
		filter, err := log.WithFilter(config.LogFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid log filter: %w", err)
		}
		opts = append(opts, filter)
	}
	if config.LogFormat == "json" {
		return log.New(os.Stderr, level, opts...), nil
	}
	return log.DevLogger(os.Stderr, level, opts...), nil
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --min-spacing to KARTLINE_MIN_SPACING
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, flagValue(val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}

// flagValue formats config values for pflag. Lists (data-dir) are joined
// the way StringSlice flags expect them.
func flagValue(val any) string {
	if list, ok := val.([]any); ok {
		parts := make([]string, len(list))
		for i, item := range list {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprintf("%v", val)
}
