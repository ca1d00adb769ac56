// Package walker finds the dump files of each building in a dataset tree
// and drives them through the conversion pipeline.
package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gjwo/nilm-gjw-data/pkg/canonical"
	"github.com/gjwo/nilm-gjw-data/pkg/channel"
	"github.com/gjwo/nilm-gjw-data/pkg/config"
	"github.com/gjwo/nilm-gjw-data/pkg/filepair"
	"github.com/gjwo/nilm-gjw-data/pkg/merger"
	"github.com/gjwo/nilm-gjw-data/pkg/pathing"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/sirupsen/logrus"
)

// Sink receives every finalized frame.
type Sink interface {
	Put(f *canonical.Frame) error
}

type Walker struct {
	dialect       *config.Dialect
	keys          *KeyResolver
	standardizer  *channel.Standardizer
	canonicalizer *canonical.Canonicalizer
	sink          Sink
}

func New(dialect *config.Dialect, sink Sink) *Walker {
	return &Walker{
		dialect:       dialect,
		keys:          NewKeyResolver(dialect.BuildingPattern, dialect.MeterNumber),
		standardizer:  channel.NewStandardizer(filepair.NewResolver(dialect.Templates), dialect.Location),
		canonicalizer: canonical.NewCanonicalizer(dialect.ColumnMapping, dialect.Location),
		sink:          sink,
	}
}

// Walk visits root depth first and returns the keys written to the sink,
// in order. The first failing file aborts the walk.
func (w *Walker) Walk(root string) ([]types.MeterKey, error) {
	var written []types.MeterKey
	seen := make(map[types.MeterKey]string)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%w: walk %s: %v", types.ErrResource, path, err)
		}
		if !d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrConfiguration, err)
		}
		if w.skipped(rel) {
			logrus.WithField("dir", path).Debug("skipping")
			return filepath.SkipDir
		}
		logrus.WithField("dir", path).Debug("checking")

		dates, err := w.findDates(path)
		if err != nil || len(dates) == 0 {
			return err
		}

		key, err := w.keys.Resolve(rel)
		if err != nil {
			return fmt.Errorf("%w: dump files in %s: %w", types.ErrParse, path, err)
		}
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s found again in %s, first in %s", types.ErrConfiguration, key, path, prev)
		}
		seen[key] = path

		if err := w.convertDirectory(path, key, dates); err != nil {
			return err
		}
		written = append(written, key)

		if w.dialect.SinglePass {
			return filepath.SkipAll
		}
		return nil
	})
	return written, err
}

func (w *Walker) skipped(rel string) bool {
	if rel == "." {
		return false
	}
	for _, fragment := range w.dialect.SkipDirFragments {
		if fragment != "" && strings.Contains(rel, fragment) {
			return true
		}
	}
	return false
}

// findDates returns the dates of the dump files in dir, sorted.
func (w *Walker) findDates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read dir %s: %v", types.ErrResource, dir, err)
	}

	var dates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matched, err := filepath.Match(w.dialect.ActiveGlob, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
		}
		if !matched {
			continue
		}
		date := w.dialect.DatePattern.FindString(entry.Name())
		if date == "" {
			return nil, fmt.Errorf("%w: no date in file name %q", types.ErrParse, entry.Name())
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

func (w *Walker) convertDirectory(dir string, key types.MeterKey, dates []string) error {
	acc := canonical.NewAccumulator(key)
	for _, date := range dates {
		logrus.WithFields(logrus.Fields{"key": key.String(), "date": date}).Info("found files for date")

		series := make([]*channel.Series, 0, len(w.dialect.Channels))
		for _, ch := range w.dialect.Channels {
			s, err := w.standardizer.Standardize(dir, date, ch)
			if err != nil {
				return err
			}
			series = append(series, s)
		}

		merged, err := merger.Merge(series...)
		if err != nil {
			return err
		}
		if err := acc.Append(merged); err != nil {
			return err
		}
	}

	f, err := acc.Finalize(w.canonicalizer)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	if w.dialect.WriteDiagnostics {
		diagPath := filepath.Join(dir, pathing.GetDiagnosticFileName(key))
		if err := f.WriteCSVFile(diagPath); err != nil {
			return fmt.Errorf("%w: diagnostic file: %v", types.ErrResource, err)
		}
	}

	if err := w.sink.Put(f); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"key":     key.String(),
		"rows":    f.Len(),
		"dropped": f.DroppedRows(),
	}).Info("stored meter")
	return nil
}
