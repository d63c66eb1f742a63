package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

// CSVHeader is the column layout of trajectory CSV files.
var CSVHeader = []string{"t(s)", "x(m)", "v(m/s)", "a(m/s2)", "KE(J)", "PE(J)", "E_total(J)"}

// Columns is the raw content of a trajectory CSV file.
type Columns struct {
	T, X, V, A, KE, PE, ETotal []float64
}

func (c *Columns) Len() int { return len(c.T) }

// WriteCSV writes one row per sample with six decimals.
func WriteCSV(w io.Writer, traj *sim.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}

	row := make([]string, len(CSVHeader))
	for i := range traj.T {
		vals := [...]float64{traj.T[i], traj.X[i], traj.V[i], traj.A[i], traj.KE[i], traj.PE[i], traj.ETotal[i]}
		for j, v := range vals {
			row[j] = strconv.FormatFloat(v, 'f', 6, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadCSV(r io.Reader) (*Columns, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(CSVHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range CSVHeader {
		if header[i] != name {
			return nil, fmt.Errorf("csv column %d: got %q, want %q", i, header[i], name)
		}
	}

	cols := &Columns{}
	dst := []*[]float64{&cols.T, &cols.X, &cols.V, &cols.A, &cols.KE, &cols.PE, &cols.ETotal}
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d column %s: %w", line, CSVHeader[j], err)
			}
			*dst[j] = append(*dst[j], v)
		}
	}

	if cols.Len() < 2 {
		return nil, fmt.Errorf("%w: csv has %d rows", dynamo.ErrTooFewSamples, cols.Len())
	}
	return cols, nil
}
