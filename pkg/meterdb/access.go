package meterdb

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/aggregator"
	"github.com/gjwo/nilm-gjw-data/pkg/canonical"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/google/uuid"
)

var ErrKeyNotStored = errors.New("key not in store")

// Put writes the frame under its meter key, replacing an earlier frame
// with the same key.
func (s *Store) Put(f *canonical.Frame) error {
	key := f.Key().String()
	columns, err := json.Marshal(f.Columns())
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", types.ErrResource, err)
	}
	defer tx.Rollback()

	if err := deleteKey(tx, key); err != nil {
		return err
	}

	_, err = tx.Exec(
		"INSERT INTO frames (meter_key, building, meter, timezone, columns, row_count, dropped_rows) "+
			"VALUES (?, ?, ?, ?, ?, ?, ?)",
		key,
		f.Key().Building,
		f.Key().Meter,
		f.Location().String(),
		string(columns),
		f.Len(),
		f.DroppedRows(),
	)
	if err != nil {
		return fmt.Errorf("%w: insert frame %s: %v", types.ErrResource, key, err)
	}

	stmt, err := tx.Prepare("INSERT INTO frame_rows (meter_key, timestamp, row_values) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("%w: prepare rows: %v", types.ErrResource, err)
	}
	defer stmt.Close()
	for i := 0; i < f.Len(); i++ {
		if _, err := stmt.Exec(key, f.Time(i).Unix(), encodeRow(f.Row(i))); err != nil {
			return fmt.Errorf("%w: insert row %d of %s: %v", types.ErrResource, i, key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit %s: %v", types.ErrResource, key, err)
	}
	return nil
}

func deleteKey(tx *sql.Tx, key string) error {
	for _, table := range []string{"frames", "frame_rows", "daily_summaries"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE meter_key = ?", key); err != nil {
			return fmt.Errorf("%w: clear %s for %s: %v", types.ErrResource, table, key, err)
		}
	}
	return nil
}

// Get reads the frame stored under key.
func (s *Store) Get(key string) (*canonical.Frame, error) {
	var meta MeterDbFrame
	err := s.db.QueryRow(
		"SELECT meter_key, building, meter, timezone, columns, row_count, dropped_rows FROM frames WHERE meter_key = ?",
		key,
	).Scan(&meta.MeterKey, &meta.Building, &meta.Meter, &meta.Timezone, &meta.Columns, &meta.RowCount, &meta.DroppedRows)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotStored, key)
		}
		return nil, err
	}

	loc, err := time.LoadLocation(meta.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: stored timezone %q: %v", types.ErrSchema, meta.Timezone, err)
	}
	var columns []types.Measurement
	if err := json.Unmarshal([]byte(meta.Columns), &columns); err != nil {
		return nil, fmt.Errorf("%w: stored columns: %v", types.ErrSchema, err)
	}

	rows, err := s.db.Query("SELECT timestamp, row_values FROM frame_rows WHERE meter_key = ? ORDER BY timestamp", key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make([]time.Time, 0, meta.RowCount)
	values := make([][]float32, 0, meta.RowCount)
	for rows.Next() {
		var ts int64
		var blob []byte
		if err := rows.Scan(&ts, &blob); err != nil {
			return nil, err
		}
		row, err := decodeRow(blob)
		if err != nil {
			return nil, err
		}
		index = append(index, time.Unix(ts, 0))
		values = append(values, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return canonical.NewFrame(types.MeterKey{Building: meta.Building, Meter: meta.Meter}, loc, columns, index, values)
}

// Keys lists stored meter keys in order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT meter_key FROM frames ORDER BY building, meter")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *Store) PutDailySummaries(key types.MeterKey, summaries []aggregator.DaySummary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", types.ErrResource, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM daily_summaries WHERE meter_key = ?", key.String()); err != nil {
		return fmt.Errorf("%w: clear summaries: %v", types.ErrResource, err)
	}
	for _, sum := range summaries {
		means, err := json.Marshal(sum.Means)
		if err != nil {
			return err
		}
		_, err = tx.Exec(
			"INSERT INTO daily_summaries (meter_key, day_start, day, sample_count, first_ts, last_ts, means, missing_seconds) "+
				"VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			key.String(),
			sum.DayStart.Unix(),
			sum.DayStart.Format(time.DateOnly),
			sum.Samples,
			sum.First.Unix(),
			sum.Last.Unix(),
			string(means),
			sum.MissingSeconds(),
		)
		if err != nil {
			return fmt.Errorf("%w: insert summary %s: %v", types.ErrResource, sum.DayStart.Format(time.DateOnly), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit summaries: %v", types.ErrResource, err)
	}
	return nil
}

func (s *Store) DailySummaries(key string) ([]MeterDbDailySummary, error) {
	rows, err := s.db.Query(
		"SELECT meter_key, day_start, day, sample_count, first_ts, last_ts, means, missing_seconds "+
			"FROM daily_summaries WHERE meter_key = ? ORDER BY day_start",
		key,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MeterDbDailySummary
	for rows.Next() {
		var sum MeterDbDailySummary
		if err := rows.Scan(&sum.MeterKey, &sum.DayStart, &sum.Day, &sum.SampleCount, &sum.FirstTs, &sum.LastTs, &sum.Means, &sum.MissingSeconds); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// PutMetadata inserts or replaces a metadata document by name.
func (s *Store) PutMetadata(doc MetadataDocument) error {
	var building any
	if doc.Building > 0 {
		building = doc.Building
	}
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (name, kind, building, document) VALUES (?, ?, ?, ?)",
		doc.Name,
		doc.Kind,
		building,
		string(doc.Document),
	)
	if err != nil {
		return fmt.Errorf("%w: insert metadata %s: %v", types.ErrResource, doc.Name, err)
	}
	return nil
}

func (s *Store) Metadata() ([]MetadataDocument, error) {
	rows, err := s.db.Query("SELECT name, kind, building, document FROM metadata ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []MetadataDocument
	for rows.Next() {
		var doc MetadataDocument
		var building sql.NullInt64
		var document string
		if err := rows.Scan(&doc.Name, &doc.Kind, &building, &document); err != nil {
			return nil, err
		}
		doc.Building = int(building.Int64)
		doc.Document = json.RawMessage(document)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *Store) RecordRun(id uuid.UUID, startedAt time.Time, datasetRoot, format string) error {
	_, err := s.db.Exec(
		"INSERT INTO conversion_runs (id, started_at, dataset_root, store_format) VALUES (?, ?, ?, ?)",
		id.String(),
		startedAt.Unix(),
		datasetRoot,
		format,
	)
	if err != nil {
		return fmt.Errorf("%w: record run: %v", types.ErrResource, err)
	}
	return nil
}

func (s *Store) RunIDs() ([]uuid.UUID, error) {
	rows, err := s.db.Query("SELECT id FROM conversion_runs ORDER BY started_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func encodeRow(values []float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeRow(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("%w: stored row has %d bytes", types.ErrSchema, len(buf))
	}
	values := make([]float32, len(buf)/4)
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return values, nil
}
