package meterdb

import "encoding/json"

type Mode uint8

const (
	// Remove any existing store file first
	ModeOverwrite Mode = 0
	// Open an existing store file
	ModeAppend Mode = 1
)

const FormatSQLite = "SQLITE"

type MeterDbFrame struct {
	MeterKey    string `db:"meter_key"`
	Building    int    `db:"building"`
	Meter       int    `db:"meter"`
	Timezone    string `db:"timezone"`
	Columns     string `db:"columns"`
	RowCount    int    `db:"row_count"`
	DroppedRows int    `db:"dropped_rows"`
}

type MeterDbDailySummary struct {
	MeterKey    string `db:"meter_key"`
	DayStart    int64  `db:"day_start"`
	Day         string `db:"day"`
	SampleCount int    `db:"sample_count"`
	FirstTs     int64  `db:"first_ts"`
	LastTs      int64  `db:"last_ts"`
	Means       string `db:"means"`

	// Seconds of the local day without a row
	MissingSeconds int `db:"missing_seconds"`
}

// MetadataDocument is one imported dataset description.
// Building is zero for documents not tied to a building.
type MetadataDocument struct {
	Name     string          `db:"name"`
	Kind     string          `db:"kind"`
	Building int             `db:"building"`
	Document json.RawMessage `db:"document"`
}
