// Package metadata imports the dataset's YAML descriptions into the store.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gjwo/nilm-gjw-data/pkg/meterdb"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	KindDataset      = "dataset"
	KindMeterDevices = "meter_devices"
	KindBuilding     = "building"
	KindOther        = "other"
)

var buildingFileRe = regexp.MustCompile(`^building(\d+)$`)

type Sink interface {
	PutMetadata(doc meterdb.MetadataDocument) error
}

// ImportToStore imports metadataDir into the existing store at storePath.
func ImportToStore(metadataDir, storePath, format string) (err error) {
	store, err := meterdb.Open(storePath, format, meterdb.ModeAppend)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()
	return Import(metadataDir, store)
}

// Import parses every .yaml file in metadataDir and hands it to sink as
// JSON. dataset.yaml must be present.
func Import(metadataDir string, sink Sink) error {
	docs, err := Load(metadataDir)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if err := sink.PutMetadata(doc); err != nil {
			return err
		}
	}
	logrus.WithFields(logrus.Fields{
		"dir":       metadataDir,
		"documents": len(docs),
	}).Info("imported metadata")
	return nil
}

func Load(metadataDir string) ([]meterdb.MetadataDocument, error) {
	entries, err := os.ReadDir(metadataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata dir: %v", types.ErrConfiguration, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	var docs []meterdb.MetadataDocument
	hasDataset := false
	for _, fileName := range names {
		doc, err := loadDocument(filepath.Join(metadataDir, fileName))
		if err != nil {
			return nil, err
		}
		if doc.Kind == KindDataset {
			hasDataset = true
		}
		docs = append(docs, doc)
	}
	if !hasDataset {
		return nil, fmt.Errorf("%w: no dataset.yaml in %s", types.ErrConfiguration, metadataDir)
	}
	return docs, nil
}

func loadDocument(path string) (meterdb.MetadataDocument, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	doc := meterdb.MetadataDocument{Name: name, Kind: classify(name)}

	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("%w: read %s: %v", types.ErrParse, path, err)
	}
	var parsed any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return doc, fmt.Errorf("%w: %s: %v", types.ErrParse, path, err)
	}
	if parsed == nil {
		return doc, fmt.Errorf("%w: %s is empty", types.ErrParse, path)
	}

	if doc.Kind == KindBuilding {
		building, err := strconv.Atoi(buildingFileRe.FindStringSubmatch(name)[1])
		if err != nil || building <= 0 {
			return doc, fmt.Errorf("%w: %s: invalid building number", types.ErrParse, path)
		}
		doc.Building = building
		if err := checkInstance(parsed, doc.Building); err != nil {
			return doc, fmt.Errorf("%s: %w", path, err)
		}
	}

	doc.Document, err = json.Marshal(normalize(parsed))
	if err != nil {
		return doc, fmt.Errorf("%w: %s: %v", types.ErrParse, path, err)
	}
	return doc, nil
}

func classify(name string) string {
	switch {
	case name == KindDataset:
		return KindDataset
	case name == KindMeterDevices:
		return KindMeterDevices
	case buildingFileRe.MatchString(name):
		return KindBuilding
	default:
		return KindOther
	}
}

// A building document's instance, when given, must match its file name.
func checkInstance(parsed any, building int) error {
	m, ok := parsed.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: building document is not a mapping", types.ErrParse)
	}
	instance, ok := m["instance"]
	if !ok {
		return nil
	}
	if n, ok := instance.(int); !ok || n != building {
		return fmt.Errorf("%w: instance %v does not match building%d", types.ErrParse, instance, building)
	}
	return nil
}

// normalize turns YAML maps with non string keys into JSON encodable ones.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, inner := range t {
			t[k] = normalize(inner)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[fmt.Sprint(k)] = normalize(inner)
		}
		return out
	case []any:
		for i, inner := range t {
			t[i] = normalize(inner)
		}
		return t
	default:
		return v
	}
}
