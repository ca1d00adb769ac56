package canonical

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// WriteCSV writes the frame with two header rows, one per column level.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)

	physical := make([]string, 0, len(f.columns)+1)
	kind := make([]string, 0, len(f.columns)+1)
	physical = append(physical, "physical_quantity")
	kind = append(kind, "type")
	for _, c := range f.columns {
		physical = append(physical, c.Physical)
		kind = append(kind, c.Type)
	}
	if err := writer.Write(physical); err != nil {
		return err
	}
	if err := writer.Write(kind); err != nil {
		return err
	}

	record := make([]string, len(f.columns)+1)
	for i, ts := range f.index {
		record[0] = ts.Format(time.RFC3339)
		for j, v := range f.values[i] {
			record[j+1] = strconv.FormatFloat(float64(v), 'g', -1, 32)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteCSVFile writes the frame to path, replacing any existing file.
func (f *Frame) WriteCSVFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	if err := f.WriteCSV(file); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return file.Close()
}
