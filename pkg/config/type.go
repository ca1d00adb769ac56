package config

import (
	"regexp"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/types"
)

type ConverterConfig struct {
	Timezone    string `toml:"timezone" envconfig:"TIMEZONE"`
	StoreFormat string `toml:"store_format" envconfig:"STORE_FORMAT"`
	// Empty means <dataset root>/SQLite/nilm_gjw_data.db
	OutputPath  string `toml:"output_path" envconfig:"OUTPUT_PATH"`
	MetadataDir string `toml:"metadata_dir" envconfig:"METADATA_DIR"`

	// Must contain one capture group holding the building number
	BuildingPattern  string   `toml:"building_pattern" envconfig:"BUILDING_PATTERN"`
	MeterNumber      int      `toml:"meter_number" envconfig:"METER_NUMBER"`
	SkipDirFragments []string `toml:"skip_dir_fragments" envconfig:"SKIP_DIR_FRAGMENTS"`
	ActiveGlob       string   `toml:"active_glob" envconfig:"ACTIVE_GLOB"`
	DatePattern      string   `toml:"date_pattern" envconfig:"DATE_PATTERN"`

	// Stop the walk after the first directory holding dump files.
	// The gjw layout has exactly one such directory per dataset.
	SinglePass       bool   `toml:"single_pass" envconfig:"SINGLE_PASS"`
	WriteDiagnostics bool   `toml:"write_diagnostics" envconfig:"WRITE_DIAGNOSTICS"`
	LogLevel         string `toml:"log_level" envconfig:"LOG_LEVEL"`

	Channels []ChannelConfig `toml:"channels" ignored:"true"`
}

type ChannelConfig struct {
	Name     string `toml:"name"`
	Prefix   string `toml:"prefix"`
	Suffix   string `toml:"suffix"`
	Physical string `toml:"physical_quantity"`
	Type     string `toml:"type"`
}

// Dialect is the validated, compiled form of a ConverterConfig.
// Components receive it explicitly instead of reading globals.
type Dialect struct {
	Location         *time.Location
	BuildingPattern  *regexp.Regexp
	MeterNumber      int
	DatePattern      *regexp.Regexp
	ActiveGlob       string
	SkipDirFragments []string
	SinglePass       bool
	WriteDiagnostics bool

	// Column order of merged frames
	Channels      []types.Channel
	Templates     map[types.Channel]types.FileTemplate
	ColumnMapping map[string]types.Measurement
}
