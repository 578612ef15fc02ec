package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peakvar",
		Short: "Variant distribution statistics over genomic peaks",
		Long: `peakvar profiles how variants distribute over the genic regions of
narrowPeak intervals: it annotates each nucleotide of every peak against
a gene model, places the variants of one or more VCF files onto the
peaks and reports per-region sizes and variant counts.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newProfileCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig reads ~/.peakvar.yaml and PEAKVAR_* environment variables.
func initConfig() {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".peakvar")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("PEAKVAR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is worth a warning.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && viper.ConfigFileUsed() != "" {
			fmt.Fprintf(os.Stderr, "Warning: could not read config %s: %v\n", viper.ConfigFileUsed(), err)
		}
	}
}

// newLogger builds the CLI logger. Logs go to stderr so they never mix
// with statistics written to stdout.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// configFilePath returns the path the config subcommand writes to.
func configFilePath() (string, error) {
	if cfgFile := viper.ConfigFileUsed(); cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".peakvar.yaml"), nil
}
