// Package export writes stored runs as JSON, CSV and PNG charts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/propsim/internal/storage"
)

var ErrNoData = errors.New("export: run has neither elements nor sweep points")

// RunData is a stored run with its table.
type RunData struct {
	Meta     *storage.RunMetadata `json:"meta"`
	Elements []storage.ElementRow `json:"elements,omitempty"`
	Sweep    []storage.SweepRow   `json:"sweep,omitempty"`
}

// ReadRun loads metadata and the table matching the run kind.
func ReadRun(st *storage.Store, runID string) (*RunData, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &RunData{Meta: meta}
	switch meta.Kind {
	case storage.KindSweep:
		data.Sweep, err = st.LoadSweep(runID)
	default:
		data.Elements, err = st.LoadElements(runID)
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// jsonSafe replaces non-finite values, which encoding/json rejects.
func jsonSafe(v float64) float64 {
	if !finite(v) {
		return 0
	}
	return v
}

func WriteJSON(w io.Writer, data *RunData) error {
	out := *data
	if len(data.Elements) > 0 {
		out.Elements = make([]storage.ElementRow, len(data.Elements))
		for i, e := range data.Elements {
			e.Residual = jsonSafe(e.Residual)
			e.Psi = jsonSafe(e.Psi)
			e.W = jsonSafe(e.W)
			e.Phi = jsonSafe(e.Phi)
			e.Gamma = jsonSafe(e.Gamma)
			e.LambdaW = jsonSafe(e.LambdaW)
			out.Elements[i] = e
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func ExportJSON(path string, data *RunData) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteJSON(f, data); err != nil {
		return err
	}
	return f.Close()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'g', 8, 64) }

// WriteCSV writes the run table with a header row.
func WriteCSV(w io.Writer, data *RunData) error {
	cw := csv.NewWriter(w)
	switch {
	case len(data.Sweep) > 0:
		cw.Write([]string{"velocity", "rpm", "J", "CT", "CP", "eta", "thrust", "torque", "power"})
		for _, p := range data.Sweep {
			cw.Write([]string{
				ff(p.Velocity), ff(p.RPM), ff(p.J), ff(p.CT), ff(p.CP),
				ff(p.Efficiency), ff(p.Thrust), ff(p.Torque), ff(p.Power),
			})
		}
	case len(data.Elements) > 0:
		cw.Write([]string{"r", "W", "phi", "gamma", "dTdr", "dQdr", "status"})
		for _, e := range data.Elements {
			cw.Write([]string{ff(e.Radius), ff(e.W), ff(e.Phi), ff(e.Gamma), ff(e.DTdr), ff(e.DQdr), e.Status})
		}
	default:
		return ErrNoData
	}
	cw.Flush()
	return cw.Error()
}
