// Package converter runs a complete dataset conversion: walk the dump
// files, store one canonical frame per meter, then import the metadata.
package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/aggregator"
	"github.com/gjwo/nilm-gjw-data/pkg/canonical"
	"github.com/gjwo/nilm-gjw-data/pkg/config"
	"github.com/gjwo/nilm-gjw-data/pkg/metadata"
	"github.com/gjwo/nilm-gjw-data/pkg/meterdb"
	"github.com/gjwo/nilm-gjw-data/pkg/pathing"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/gjwo/nilm-gjw-data/pkg/walker"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Result struct {
	RunID      uuid.UUID
	OutputPath string
	Keys       []types.MeterKey
}

// storeSink writes each frame and its daily summary to the store.
type storeSink struct {
	store *meterdb.Store
}

func (s storeSink) Put(f *canonical.Frame) error {
	if err := s.store.Put(f); err != nil {
		return err
	}
	return s.store.PutDailySummaries(f.Key(), aggregator.Daily(f))
}

// Convert converts the dataset at root into a store at output. An empty
// output or format falls back to the config, then to the defaults.
func Convert(root, output, format string, cfg *config.ConverterConfig) (*Result, error) {
	if cfg == nil {
		cfg = config.DefaultConverterConfig()
	}
	root, dialect, err := prepare(root, cfg)
	if err != nil {
		return nil, err
	}
	output, format = resolveOutput(root, output, format, cfg)

	result := &Result{RunID: uuid.New(), OutputPath: output}
	logrus.WithFields(logrus.Fields{
		"run":    result.RunID.String(),
		"output": output,
		"format": format,
	}).Info("opening datastore")

	store, err := meterdb.Open(output, format, meterdb.ModeOverwrite)
	if err != nil {
		return nil, err
	}

	result.Keys, err = walk(store, root, format, result.RunID, dialect)
	// The store is closed on every path, before metadata import reopens it
	if closeErr := store.Close(); closeErr != nil {
		err = errors.Join(err, closeErr)
	}
	if err != nil {
		return result, err
	}

	metadataDir := pathing.GetMetadataDir(root, cfg.MetadataDir)
	if err := metadata.ImportToStore(metadataDir, output, format); err != nil {
		return result, err
	}

	logrus.WithFields(logrus.Fields{
		"run":    result.RunID.String(),
		"meters": len(result.Keys),
	}).Info("done converting gjw dataset")
	return result, nil
}

func walk(store *meterdb.Store, root, format string, runID uuid.UUID, dialect *config.Dialect) ([]types.MeterKey, error) {
	if err := store.RecordRun(runID, time.Now(), root, format); err != nil {
		return nil, err
	}
	return walker.New(dialect, storeSink{store: store}).Walk(root)
}

// RefreshMetadata re-imports the metadata into an existing store without
// touching its frames.
func RefreshMetadata(root, output string, cfg *config.ConverterConfig) error {
	if cfg == nil {
		cfg = config.DefaultConverterConfig()
	}
	root, _, err := prepare(root, cfg)
	if err != nil {
		return err
	}
	output, format := resolveOutput(root, output, "", cfg)

	if err := metadata.ImportToStore(pathing.GetMetadataDir(root, cfg.MetadataDir), output, format); err != nil {
		return err
	}
	logrus.WithField("output", output).Info("done refreshing metadata")
	return nil
}

func prepare(root string, cfg *config.ConverterConfig) (string, *config.Dialect, error) {
	if root == "" {
		return "", nil, fmt.Errorf("%w: no dataset root given", types.ErrConfiguration)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", nil, fmt.Errorf("%w: dataset root: %v", types.ErrConfiguration, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", nil, fmt.Errorf("%w: dataset root: %v", types.ErrConfiguration, err)
	}
	if !info.IsDir() {
		return "", nil, fmt.Errorf("%w: dataset root %s is not a directory", types.ErrConfiguration, abs)
	}

	dialect, err := cfg.Dialect()
	if err != nil {
		return "", nil, err
	}
	return abs, dialect, nil
}

func resolveOutput(root, output, format string, cfg *config.ConverterConfig) (string, string) {
	if output == "" {
		output = cfg.OutputPath
	}
	if output == "" {
		output = pathing.GetDefaultOutputPath(root)
	}
	if format == "" {
		format = cfg.StoreFormat
	}
	return output, format
}
