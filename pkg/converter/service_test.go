package converter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gjwo/nilm-gjw-data/pkg/config"
	"github.com/gjwo/nilm-gjw-data/pkg/meterdb"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// gjwDataset lays out a minimal dataset with one building.
func gjwDataset(t *testing.T, withReactive bool) string {
	root := t.TempDir()
	elec := filepath.Join(root, "building3", "elec")
	writeFile(t, filepath.Join(elec, "4-POWER_REAL_FINE 2020-01-01 Dump.csv"), "1577836800,100\n1577836801,105\n")
	if withReactive {
		writeFile(t, filepath.Join(elec, "5-POWER_REACTIVE_STANDARD 2020-01-01 Dump.csv"), "1577836800,10\n")
	}
	writeFile(t, filepath.Join(root, "metadata", "dataset.yaml"), "name: GJW\ntimezone: Europe/London\n")
	writeFile(t, filepath.Join(root, "metadata", "building3.yaml"), "instance: 3\n")
	return root
}

func openStore(t *testing.T, path string) *meterdb.Store {
	t.Helper()
	store, err := meterdb.Open(path, meterdb.FormatSQLite, meterdb.ModeAppend)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestConvertEndToEnd(t *testing.T) {
	root := gjwDataset(t, true)

	result, err := Convert(root, "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "SQLite", "nilm_gjw_data.db"), result.OutputPath)
	assert.Equal(t, []types.MeterKey{{Building: 3, Meter: 1}}, result.Keys)

	store := openStore(t, result.OutputPath)
	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"building=3, meter=1"}, keys)

	f, err := store.Get("building=3, meter=1")
	require.NoError(t, err)
	assert.Equal(t, []types.Measurement{
		{Physical: "power", Type: "active"},
		{Physical: "power", Type: "reactive"},
	}, f.Columns())
	require.Equal(t, 2, f.Len())
	assert.Equal(t, []float32{100, 10}, f.Row(0))
	assert.Equal(t, []float32{105, 0}, f.Row(1))
	assert.True(t, f.Time(0).Before(f.Time(1)))
	assert.Equal(t, "Europe/London", f.Time(0).Location().String())

	docs, err := store.Metadata()
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	ids, err := store.RunIDs()
	require.NoError(t, err)
	assert.Equal(t, result.RunID, ids[0])

	sums, err := store.DailySummaries("building=3, meter=1")
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, 2, sums[0].SampleCount)

	assert.FileExists(t, filepath.Join(root, "building3", "elec", "building3_meter1.data"))
}

func TestConvertMissingReactiveFile(t *testing.T) {
	root := gjwDataset(t, false)
	output := filepath.Join(t.TempDir(), "out.db")

	_, err := Convert(root, output, meterdb.FormatSQLite, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrParse)

	// closed but incomplete: reopenable, holds no frames
	store := openStore(t, output)
	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestConvertRootNotADirectory(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "out.db")

	_, err := Convert(filepath.Join(dir, "missing"), output, "", nil)
	assert.ErrorIs(t, err, types.ErrConfiguration)

	file := filepath.Join(dir, "file")
	writeFile(t, file, "x")
	_, err = Convert(file, output, "", nil)
	assert.ErrorIs(t, err, types.ErrConfiguration)

	assert.NoFileExists(t, output)
}

func TestConvertUnsupportedFormat(t *testing.T) {
	root := gjwDataset(t, true)
	_, err := Convert(root, filepath.Join(t.TempDir(), "out.h5"), "HDF", nil)
	assert.ErrorIs(t, err, types.ErrResource)
}

func TestConvertMissingMetadata(t *testing.T) {
	root := gjwDataset(t, true)
	require.NoError(t, os.RemoveAll(filepath.Join(root, "metadata")))

	result, err := Convert(root, "", "", nil)
	assert.ErrorIs(t, err, types.ErrConfiguration)

	// frames were already written before the import failed
	keys, err := openStore(t, result.OutputPath).Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestConvertUsesConfigOutputPath(t *testing.T) {
	root := gjwDataset(t, true)
	cfg := config.DefaultConverterConfig()
	cfg.OutputPath = filepath.Join(t.TempDir(), "configured.db")
	cfg.WriteDiagnostics = false

	result, err := Convert(root, "", "", cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.OutputPath, result.OutputPath)
	assert.FileExists(t, cfg.OutputPath)
	assert.NoFileExists(t, filepath.Join(root, "building3", "elec", "building3_meter1.data"))
}

func TestRefreshMetadata(t *testing.T) {
	root := gjwDataset(t, true)
	result, err := Convert(root, "", "", nil)
	require.NoError(t, err)

	writeFile(t, filepath.Join(root, "metadata", "meter_devices.yaml"), "EnviR:\n  model: EnviR\n")
	require.NoError(t, RefreshMetadata(root, "", nil))

	store := openStore(t, result.OutputPath)
	docs, err := store.Metadata()
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestRefreshMetadataWithoutStore(t *testing.T) {
	root := gjwDataset(t, true)
	err := RefreshMetadata(root, filepath.Join(t.TempDir(), "none.db"), nil)
	assert.ErrorIs(t, err, types.ErrResource)
}
