package server

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cxd309/lifeflow-engine/internal/drivers"
)

var driverColumns = []string{"placa", "clase", "marca", "modelo", "dueño", "nivel de conduccion"}

// ReadDriversCSV parses the driver table. The header must contain every
// driver column; extra columns are ignored.
func ReadDriversCSV(r io.Reader) ([]drivers.Driver, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range driverColumns {
		if _, ok := col[c]; !ok {
			return nil, fmt.Errorf("csv missing column %q", c)
		}
	}

	var out []drivers.Driver
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		level, err := strconv.ParseFloat(strings.TrimSpace(rec[col["nivel de conduccion"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad driving level: %w", line, err)
		}
		out = append(out, drivers.Driver{
			Plate: rec[col["placa"]],
			Class: rec[col["clase"]],
			Brand: rec[col["marca"]],
			Model: rec[col["modelo"]],
			Owner: rec[col["dueño"]],
			Level: int(math.Round(level)),
		})
	}
	return out, nil
}

func readDriversFile(path string) ([]drivers.Driver, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening driver table: %w", err)
	}
	defer f.Close()
	return ReadDriversCSV(f)
}
