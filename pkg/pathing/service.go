package pathing

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gjwo/nilm-gjw-data/pkg/types"
)

const DefaultStoreFileName = "nilm_gjw_data.db"

// GetDefaultOutputPath is where the store goes when no output path is given.
func GetDefaultOutputPath(datasetRoot string) string {
	return filepath.Join(datasetRoot, "SQLite", DefaultStoreFileName)
}

func GetMetadataDir(datasetRoot, metadataDir string) string {
	if filepath.IsAbs(metadataDir) {
		return metadataDir
	}
	return filepath.Join(datasetRoot, metadataDir)
}

func GetConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "nilm_gjw_data"), nil
}

// Not called .csv so later scans for dump files never pick it up
func GetDiagnosticFileName(key types.MeterKey) string {
	return fmt.Sprintf("building%d_meter%d.data", key.Building, key.Meter)
}
