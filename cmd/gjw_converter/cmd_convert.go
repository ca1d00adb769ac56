package main

import (
	"github.com/gjwo/nilm-gjw-data/pkg/converter"
	"github.com/spf13/cobra"
)

var (
	convertOutput string
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert <dataset root>",
	Short: "Convert a dataset directory into a store",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "store file (default <root>/SQLite/nilm_gjw_data.db)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "store format (default SQLITE)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	result, err := converter.Convert(args[0], convertOutput, convertFormat, cfg)
	if err != nil {
		return err
	}
	cmd.Printf("Converted %d meter(s) into %s\n", len(result.Keys), result.OutputPath)
	return nil
}
