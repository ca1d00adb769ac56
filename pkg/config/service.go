package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/gjwo/nilm-gjw-data/pkg/pathing"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "GJW"

func DefaultConverterConfig() *ConverterConfig {
	return &ConverterConfig{
		Timezone:         "Europe/London",
		StoreFormat:      "SQLITE",
		MetadataDir:      "metadata",
		BuildingPattern:  `building(\d+)`,
		MeterNumber:      1,
		SkipDirFragments: []string{".git", ".ipynb"},
		ActiveGlob:       "4*.csv",
		DatePattern:      `\d{4}-\d{2}-\d{2}`,
		SinglePass:       true,
		WriteDiagnostics: true,
		LogLevel:         "info",
		Channels: []ChannelConfig{
			{
				Name:     string(types.ChannelActive),
				Prefix:   "4-POWER_REAL_FINE ",
				Suffix:   " Dump",
				Physical: "power",
				Type:     "active",
			},
			{
				Name:     string(types.ChannelReactive),
				Prefix:   "5-POWER_REACTIVE_STANDARD ",
				Suffix:   " Dump",
				Physical: "power",
				Type:     "reactive",
			},
		},
	}
}

// LoadConverterConfig reads the TOML config at configPath, writing the
// defaults there first if the file does not exist. An empty path uses the
// per-user config directory. Environment variables prefixed GJW_ override
// file values.
func LoadConverterConfig(configPath string) (*ConverterConfig, error) {
	if configPath == "" {
		dir, err := pathing.GetConfigDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrConfiguration, err)
		}
		configPath = filepath.Join(dir, "gjw_converter.toml")
	}

	cfg := DefaultConverterConfig()

	// Create default if not exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeConfig(configPath, cfg); err != nil {
			return nil, err
		}
	} else {
		// Decoding over the defaults keeps them for keys the file omits
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("%w: decode %s: %v", types.ErrConfiguration, configPath, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("%w: environment overrides: %v", types.ErrConfiguration, err)
	}
	return cfg, nil
}

func writeConfig(configPath string, cfg *ConverterConfig) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("%w: create config dir: %v", types.ErrConfiguration, err)
	}
	cfgFile, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("%w: create config file: %v", types.ErrConfiguration, err)
	}
	defer cfgFile.Close()
	if err := toml.NewEncoder(cfgFile).Encode(cfg); err != nil {
		return fmt.Errorf("%w: write config file: %v", types.ErrConfiguration, err)
	}
	return nil
}

// Dialect validates the config and compiles its patterns.
func (c *ConverterConfig) Dialect() (*Dialect, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", types.ErrConfiguration, c.Timezone, err)
	}

	buildingRe, err := regexp.Compile(c.BuildingPattern)
	if err != nil {
		return nil, fmt.Errorf("%w: building pattern: %v", types.ErrConfiguration, err)
	}
	if buildingRe.NumSubexp() < 1 {
		return nil, fmt.Errorf("%w: building pattern %q has no capture group", types.ErrConfiguration, c.BuildingPattern)
	}

	dateRe, err := regexp.Compile(c.DatePattern)
	if err != nil {
		return nil, fmt.Errorf("%w: date pattern: %v", types.ErrConfiguration, err)
	}

	if _, err := filepath.Match(c.ActiveGlob, ""); err != nil {
		return nil, fmt.Errorf("%w: active glob %q: %v", types.ErrConfiguration, c.ActiveGlob, err)
	}
	if c.MeterNumber <= 0 {
		return nil, fmt.Errorf("%w: meter number must be positive", types.ErrConfiguration)
	}
	if len(c.Channels) == 0 {
		return nil, fmt.Errorf("%w: no channels configured", types.ErrConfiguration)
	}

	d := &Dialect{
		Location:         loc,
		BuildingPattern:  buildingRe,
		MeterNumber:      c.MeterNumber,
		DatePattern:      dateRe,
		ActiveGlob:       c.ActiveGlob,
		SkipDirFragments: c.SkipDirFragments,
		SinglePass:       c.SinglePass,
		WriteDiagnostics: c.WriteDiagnostics,
		Templates:        make(map[types.Channel]types.FileTemplate, len(c.Channels)),
		ColumnMapping:    make(map[string]types.Measurement, len(c.Channels)),
	}
	for _, ch := range c.Channels {
		name := strings.TrimSpace(ch.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: channel without a name", types.ErrConfiguration)
		}
		if _, dup := d.Templates[types.Channel(name)]; dup {
			return nil, fmt.Errorf("%w: channel %q configured twice", types.ErrConfiguration, name)
		}
		if ch.Physical == "" || ch.Type == "" {
			return nil, fmt.Errorf("%w: channel %q has no measurement mapping", types.ErrConfiguration, name)
		}
		d.Channels = append(d.Channels, types.Channel(name))
		d.Templates[types.Channel(name)] = types.FileTemplate{Prefix: ch.Prefix, Suffix: ch.Suffix}
		d.ColumnMapping[name] = types.Measurement{Physical: ch.Physical, Type: ch.Type}
	}
	return d, nil
}
