// Package record exports per-tick game trajectories as Parquet files for
// offline analysis of strategies.
package record

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/vovakirdan/snakelab/internal/sim"
)

// SchemaVersion is stored in the file metadata under the "schema" key.
const SchemaVersion = "snakelab_trajectory_v1"

// Row is one tick of one run.
type Row struct {
	RunID      string `parquet:"run_id,dict"`
	Strategy   string `parquet:"strategy,dict"`
	Seed       int64  `parquet:"seed"`
	Width      int32  `parquet:"width"`
	Height     int32  `parquet:"height"`
	Tick       int64  `parquet:"tick"`
	HeadX      int32  `parquet:"head_x"`
	HeadY      int32  `parquet:"head_y"`
	FoodX      int32  `parquet:"food_x"`
	FoodY      int32  `parquet:"food_y"`
	Length     int32  `parquet:"length"`
	Score      int32  `parquet:"score"`
	Direction  string `parquet:"direction,dict"`
	Tag        string `parquet:"tag,dict"`
	PathLength int32  `parquet:"path_length"`
	Status     string `parquet:"status,dict"`
}

// Rows flattens the trajectory of res. Results played without trajectory
// collection yield no rows.
func Rows(runID string, res sim.Result) []Row {
	rows := make([]Row, 0, len(res.Trajectory))
	for _, t := range res.Trajectory {
		rows = append(rows, Row{
			RunID:      runID,
			Strategy:   string(res.Strategy),
			Seed:       res.Seed,
			Width:      int32(res.Width),
			Height:     int32(res.Height),
			Tick:       int64(t.Tick),
			HeadX:      int32(t.Head.X),
			HeadY:      int32(t.Head.Y),
			FoodX:      int32(t.Food.X),
			FoodY:      int32(t.Food.Y),
			Length:     int32(t.Length),
			Score:      int32(t.Score),
			Direction:  t.Direction.String(),
			Tag:        string(t.Move.Tag),
			PathLength: int32(t.Move.PathLength),
			Status:     string(t.Status),
		})
	}
	return rows
}

// Writer streams rows from many runs into one file. Rows land in a temporary
// file that Close renames into place and Abort deletes.
type Writer struct {
	path    string
	tmpPath string
	file    *os.File
	writer  *parquet.GenericWriter[Row]
	rows    int
	runs    int
}

// NewWriter opens a streaming writer for path.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		return nil, errors.New("record: output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("record: create output dir: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("record: open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[Row](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", SchemaVersion)

	return &Writer{path: path, tmpPath: tmpPath, file: f, writer: w}, nil
}

// Rows returns the number of rows written so far.
func (w *Writer) Rows() int { return w.rows }

// Runs returns the number of runs written so far.
func (w *Writer) Runs() int { return w.runs }

// WriteResult appends the trajectory of one run.
func (w *Writer) WriteResult(runID string, res sim.Result) error {
	if w.writer == nil {
		return errors.New("record: writer is closed")
	}
	rows := Rows(runID, res)
	if len(rows) == 0 {
		return nil
	}
	if _, err := w.writer.Write(rows); err != nil {
		return fmt.Errorf("record: write rows: %w", err)
	}
	w.rows += len(rows)
	w.runs++
	return nil
}

// Close flushes the file and moves it into place. When nothing was written
// the temporary file is removed and no output is produced.
func (w *Writer) Close() error {
	if w.writer == nil && w.file == nil {
		return nil
	}

	closeErr := w.writer.Close()
	w.writer = nil
	_ = w.file.Sync()
	fileErr := w.file.Close()
	w.file = nil

	if closeErr != nil {
		_ = os.Remove(w.tmpPath)
		return fmt.Errorf("record: close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		_ = os.Remove(w.tmpPath)
		return fmt.Errorf("record: close parquet file: %w", fileErr)
	}

	if w.rows == 0 {
		_ = os.Remove(w.tmpPath)
		return nil
	}
	if err := os.Rename(w.tmpPath, w.path); err != nil {
		return fmt.Errorf("record: rename parquet: %w", err)
	}
	return nil
}

// Abort discards everything written so far. The output path is left as it
// was before NewWriter.
func (w *Writer) Abort() error {
	if w.writer == nil && w.file == nil {
		return nil
	}

	_ = w.writer.Close()
	w.writer = nil
	fileErr := w.file.Close()
	w.file = nil

	if err := os.Remove(w.tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("record: remove tmp parquet: %w", err)
	}
	if fileErr != nil {
		return fmt.Errorf("record: close parquet file: %w", fileErr)
	}
	return nil
}

// ReadFile loads every row of a trajectory file.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("record: open: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("record: stat: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("record: open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	rows := make([]Row, 0, reader.NumRows())
	buf := make([]Row, 512)
	for {
		n, err := reader.Read(buf)
		rows = append(rows, buf[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("record: read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}

// Schema returns the schema version stored in the file, or "" when absent.
func Schema(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("record: open: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("record: stat: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return "", fmt.Errorf("record: open parquet: %w", err)
	}
	v, _ := pf.Lookup("schema")
	return v, nil
}
