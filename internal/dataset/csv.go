// Package dataset loads California-housing style tables from CSV.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

// ReadCSV parses a header row followed by numeric rows. The required columns
// must all be present; other columns are kept as-is.
func ReadCSV(r io.Reader, required []string) (*housing.Frame, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: %w: empty input", pkgerrors.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("csv header: %w", err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var missing []string
	for _, req := range required {
		found := false
		for _, n := range names {
			if n == req {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, &pkgerrors.SchemaError{Op: "csv", Missing: missing}
	}

	cols := make([][]float64, len(names))
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		for j, raw := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %s: %w", line, names[j], err)
			}
			cols[j] = append(cols[j], v)
		}
	}
	return housing.NewFrame(names, cols)
}

// LoadCSV opens path and reads it with ReadCSV.
func LoadCSV(path string, required []string) (*housing.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, required)
}

// TrainingColumns are the columns a training table must carry.
func TrainingColumns() []string {
	return append(housing.RawColumns(), housing.Target)
}
