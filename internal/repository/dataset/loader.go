// Package dataset loads labeled training data from the embedded reference
// dataset, CSV files or Parquet files.
package dataset

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/kailas-cloud/forestd/internal/domain"
	domds "github.com/kailas-cloud/forestd/internal/domain/dataset"
)

// Fisher's iris: 150 rows, 4 features (cm), classes 0=setosa 1=versicolor 2=virginica.
//
//go:embed iris.csv
var irisCSV []byte

// ReferenceName is the source name reported for the embedded dataset.
const ReferenceName = "iris"

// parquetRow is the on-disk row layout accepted for Parquet sources.
type parquetRow struct {
	Features []float64 `parquet:"features,list"`
	Label    int64     `parquet:"label"`
}

// Loader reads a dataset from a configured source.
// An empty source selects the embedded reference dataset.
type Loader struct {
	source string
}

// New creates a Loader for source (path to .csv/.parquet, or "" for the reference dataset).
func New(source string) *Loader {
	return &Loader{source: source}
}

// Source returns a human-readable name of the configured source.
func (l *Loader) Source() string {
	if l.source == "" {
		return ReferenceName
	}
	return l.source
}

// Load reads and validates the dataset. Every failure wraps domain.ErrDatasetUnavailable.
func (l *Loader) Load(ctx context.Context) (domds.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return domds.Dataset{}, fmt.Errorf("%w: %w", domain.ErrDatasetUnavailable, err)
	}

	ds, err := l.load()
	if err != nil {
		return domds.Dataset{}, fmt.Errorf("%w: %s: %w", domain.ErrDatasetUnavailable, l.Source(), err)
	}
	return ds, nil
}

func (l *Loader) load() (domds.Dataset, error) {
	if l.source == "" {
		return Reference()
	}

	switch strings.ToLower(filepath.Ext(l.source)) {
	case ".csv":
		f, err := os.Open(filepath.Clean(l.source))
		if err != nil {
			return domds.Dataset{}, fmt.Errorf("open csv: %w", err)
		}
		defer func() { _ = f.Close() }()
		return ReadCSV(f)
	case ".parquet":
		return readParquet(l.source)
	default:
		return domds.Dataset{}, fmt.Errorf("unsupported dataset format %q", filepath.Ext(l.source))
	}
}

// Reference returns the embedded reference dataset.
func Reference() (domds.Dataset, error) {
	return ReadCSV(bytes.NewReader(irisCSV))
}

// ReadCSV parses rows of numeric features followed by an integer label.
// A first row whose leading field is not numeric is treated as a header.
func ReadCSV(r io.Reader) (domds.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var (
		features [][]float64
		labels   []int
	)
	for line := 1; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domds.Dataset{}, fmt.Errorf("read csv: %w", err)
		}
		if line == 1 && isHeader(record) {
			continue
		}
		if len(record) < 2 {
			return domds.Dataset{}, fmt.Errorf("line %d: need at least one feature and a label", line)
		}

		row := make([]float64, len(record)-1)
		for i, field := range record[:len(record)-1] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return domds.Dataset{}, fmt.Errorf("line %d column %d: %w", line, i+1, err)
			}
			row[i] = v
		}
		label, err := parseLabel(record[len(record)-1])
		if err != nil {
			return domds.Dataset{}, fmt.Errorf("line %d label: %w", line, err)
		}
		features = append(features, row)
		labels = append(labels, label)
	}

	return domds.New(features, labels)
}

func readParquet(path string) (domds.Dataset, error) {
	rows, err := parquet.ReadFile[parquetRow](filepath.Clean(path))
	if err != nil {
		return domds.Dataset{}, fmt.Errorf("read parquet: %w", err)
	}

	features := make([][]float64, len(rows))
	labels := make([]int, len(rows))
	for i, row := range rows {
		features[i] = row.Features
		labels[i] = int(row.Label)
	}
	return domds.New(features, labels)
}

// WriteParquet stores ds in the layout readParquet accepts.
func WriteParquet(path string, ds domds.Dataset) error {
	rows := make([]parquetRow, ds.Len())
	for i := range rows {
		features, label := ds.Row(i)
		rows[i] = parquetRow{Features: features, Label: int64(label)}
	}
	if err := parquet.WriteFile(filepath.Clean(path), rows); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(record[0], 64)
	return err != nil
}

// parseLabel accepts "2" as well as "2.0"; fractional labels are rejected.
func parseLabel(s string) (int, error) {
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("not an integer class: %q", s)
	}
	return int(f), nil
}
