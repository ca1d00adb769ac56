package main

import (
	"github.com/gjwo/nilm-gjw-data/pkg/converter"
	"github.com/spf13/cobra"
)

var refreshOutput string

var refreshMetadataCmd = &cobra.Command{
	Use:   "refresh-metadata <dataset root>",
	Short: "Re-import the dataset metadata into an existing store",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefreshMetadata,
}

func init() {
	refreshMetadataCmd.Flags().StringVarP(&refreshOutput, "output", "o", "", "store file (default <root>/SQLite/nilm_gjw_data.db)")
	rootCmd.AddCommand(refreshMetadataCmd)
}

func runRefreshMetadata(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := converter.RefreshMetadata(args[0], refreshOutput, cfg); err != nil {
		return err
	}
	cmd.Println("Done refreshing metadata")
	return nil
}
