// gjw_converter turns the GJW smart meter dumps into a keyed store.
package main

import (
	"fmt"
	"os"

	"github.com/gjwo/nilm-gjw-data/pkg/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gjw_converter",
	Short: "Convert GJW smart meter dumps into a NILM dataset store",
	Long: `gjw_converter reads the per second active and reactive power dumps of the
GJW dataset, normalizes them into one table per building meter and writes
them, together with the dataset metadata, into a single store file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is gjw_converter.toml in the user config dir)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config and applies its log level.
func loadConfig() (*config.ConverterConfig, error) {
	cfg, err := config.LoadConverterConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logrus.SetLevel(level)
	return cfg, nil
}
