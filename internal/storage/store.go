// Package storage keeps solver runs on disk, one directory per run.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/propsim/internal/qprop"
	"github.com/san-kum/propsim/internal/sweep"
)

const (
	KindSolve = "solve"
	KindSweep = "sweep"

	metadataFile = "metadata.json"
	elementsFile = "elements.csv"
	sweepFile    = "sweep.csv"
)

var ErrWrongKind = errors.New("storage: run has no data of that kind")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`

	Blades   int     `json:"blades"`
	Diameter float64 `json:"diameter"`
	Elements int     `json:"elements"`

	Velocity     float64 `json:"velocity,omitempty"`
	RPM          float64 `json:"rpm,omitempty"`
	Density      float64 `json:"density"`
	Viscosity    float64 `json:"viscosity"`
	SpeedOfSound float64 `json:"speed_of_sound,omitempty"`

	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
	Workers       int     `json:"workers,omitempty"`

	Thrust      float64 `json:"thrust,omitempty"`
	Torque      float64 `json:"torque,omitempty"`
	Power       float64 `json:"power,omitempty"`
	CT          float64 `json:"ct,omitempty"`
	CP          float64 `json:"cp,omitempty"`
	J           float64 `json:"j,omitempty"`
	Efficiency  float64 `json:"efficiency,omitempty"`
	Unconverged []int   `json:"unconverged,omitempty"`
	Failed      []int   `json:"failed,omitempty"`

	Points  int                `json:"points,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

// ElementRow is one line of elements.csv.
type ElementRow struct {
	Index      int
	Radius     float64
	Psi        float64
	W          float64
	Phi        float64
	Gamma      float64
	LambdaW    float64
	DTdr       float64
	DQdr       float64
	Residual   float64
	Iterations int
	Status     string
}

// SweepRow is one line of sweep.csv.
type SweepRow struct {
	Velocity    float64
	RPM         float64
	J           float64
	CT          float64
	CP          float64
	Efficiency  float64
	Thrust      float64
	Torque      float64
	Power       float64
	Unconverged int
	Failed      int
}

var elementHeader = []string{
	"index", "r", "psi", "W", "phi", "gamma", "lambda_w",
	"dTdr", "dQdr", "residual", "iterations", "status",
}

var sweepHeader = []string{
	"velocity", "rpm", "J", "CT", "CP", "eta",
	"thrust", "torque", "power", "unconverged", "failed",
}

// ElementRows tabulates the per-element results of perf as written to
// elements.csv.
func ElementRows(perf *qprop.Performance) []ElementRow {
	rows := make([]ElementRow, perf.Len())
	for i := range rows {
		rows[i] = ElementRow{
			Index:      i,
			Radius:     perf.Radius[i],
			Psi:        perf.Psi[i],
			W:          perf.W[i],
			Phi:        perf.Phi[i],
			Gamma:      perf.Gamma[i],
			LambdaW:    perf.LambdaW[i],
			DTdr:       perf.DTdr[i],
			DQdr:       perf.DQdr[i],
			Residual:   perf.Residuals[i],
			Iterations: perf.Iterations[i],
			Status:     perf.Status[i].String(),
		}
	}
	return rows
}

// SweepRows tabulates the points of res as written to sweep.csv.
func SweepRows(res *sweep.Result) []SweepRow {
	rows := make([]SweepRow, len(res.Points))
	for i, p := range res.Points {
		rows[i] = SweepRow{
			Velocity:    p.Flow.Velocity,
			RPM:         p.Flow.RPM(),
			J:           p.J,
			CT:          p.CT,
			CP:          p.CP,
			Efficiency:  p.Efficiency,
			Thrust:      p.Thrust,
			Torque:      p.Torque,
			Power:       p.Power,
			Unconverged: len(p.Unconverged),
			Failed:      len(p.Failed),
		}
	}
	return rows
}

func (r ElementRow) record() []string {
	return []string{
		strconv.Itoa(r.Index),
		formatFloat(r.Radius),
		formatFloat(r.Psi),
		formatFloat(r.W),
		formatFloat(r.Phi),
		formatFloat(r.Gamma),
		formatFloat(r.LambdaW),
		formatFloat(r.DTdr),
		formatFloat(r.DQdr),
		formatFloat(r.Residual),
		strconv.Itoa(r.Iterations),
		r.Status,
	}
}

func (r SweepRow) record() []string {
	return []string{
		formatFloat(r.Velocity),
		formatFloat(r.RPM),
		formatFloat(r.J),
		formatFloat(r.CT),
		formatFloat(r.CP),
		formatFloat(r.Efficiency),
		formatFloat(r.Thrust),
		formatFloat(r.Torque),
		formatFloat(r.Power),
		strconv.Itoa(r.Unconverged),
		strconv.Itoa(r.Failed),
	}
}

func runName(name string) string {
	if name == "" {
		name = "rotor"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *Store) newRun(kind, name string, rotor *qprop.Rotor, cfg qprop.Config) (RunMetadata, string, error) {
	now := s.now()
	id := fmt.Sprintf("%s_%s_%d", runName(name), kind, now.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return RunMetadata{}, "", err
	}
	return RunMetadata{
		ID:            id,
		Kind:          kind,
		Name:          name,
		Timestamp:     now,
		Blades:        rotor.Blades,
		Diameter:      rotor.Diameter,
		Elements:      len(rotor.Elements),
		Tolerance:     cfg.Tolerance,
		MaxIterations: cfg.MaxIterations,
		Workers:       cfg.Workers,
	}, dir, nil
}

func writeMetadata(dir string, meta RunMetadata) error {
	f, err := os.Create(filepath.Join(dir, metadataFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// SaveSolve stores a single operating point with its per-element loading.
func (s *Store) SaveSolve(name string, rotor *qprop.Rotor, flow qprop.Flow, cfg qprop.Config, perf *qprop.Performance) (string, error) {
	meta, dir, err := s.newRun(KindSolve, name, rotor, cfg)
	if err != nil {
		return "", err
	}
	meta.Velocity = flow.Velocity
	meta.RPM = flow.RPM()
	meta.Density = flow.Density
	meta.Viscosity = flow.Viscosity
	meta.SpeedOfSound = flow.SpeedOfSound
	meta.Thrust = perf.Thrust
	meta.Torque = perf.Torque
	meta.Power = perf.Power()
	meta.CT = perf.CT
	meta.CP = perf.CP
	meta.J = perf.J
	meta.Efficiency = perf.Efficiency()
	meta.Unconverged = perf.Unconverged()
	meta.Failed = perf.Failed()

	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}

	elements := ElementRows(perf)
	rows := make([][]string, len(elements))
	for i, row := range elements {
		rows[i] = row.record()
	}
	if err := writeCSV(filepath.Join(dir, elementsFile), elementHeader, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveSweep stores every point of a sweep together with its metrics.
func (s *Store) SaveSweep(name string, rotor *qprop.Rotor, cfg qprop.Config, res *sweep.Result) (string, error) {
	meta, dir, err := s.newRun(KindSweep, name, rotor, cfg)
	if err != nil {
		return "", err
	}
	meta.Points = len(res.Points)
	meta.Metrics = res.Metrics
	if len(res.Points) > 0 {
		first := res.Points[0].Flow
		meta.Density = first.Density
		meta.Viscosity = first.Viscosity
		meta.SpeedOfSound = first.SpeedOfSound
	}

	if err := writeMetadata(dir, meta); err != nil {
		return "", err
	}

	points := SweepRows(res)
	rows := make([][]string, len(points))
	for i, row := range points {
		rows[i] = row.record()
	}
	if err := writeCSV(filepath.Join(dir, sweepFile), sweepHeader, rows); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns the stored runs, oldest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

func readCSV(path string, columns int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrWrongKind)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = columns
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// parser accumulates the first conversion error of a CSV row.
type parser struct {
	row int
	err error
}

func (p *parser) atof(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("row %d: %w", p.row, err)
	}
	return v
}

func (p *parser) atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("row %d: %w", p.row, err)
	}
	return v
}

func (s *Store) LoadElements(runID string) ([]ElementRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, elementsFile), len(elementHeader))
	if err != nil {
		return nil, err
	}

	rows := make([]ElementRow, len(records))
	for i, rec := range records {
		p := parser{row: i + 1}
		rows[i] = ElementRow{
			Index:      p.atoi(rec[0]),
			Radius:     p.atof(rec[1]),
			Psi:        p.atof(rec[2]),
			W:          p.atof(rec[3]),
			Phi:        p.atof(rec[4]),
			Gamma:      p.atof(rec[5]),
			LambdaW:    p.atof(rec[6]),
			DTdr:       p.atof(rec[7]),
			DQdr:       p.atof(rec[8]),
			Residual:   p.atof(rec[9]),
			Iterations: p.atoi(rec[10]),
			Status:     rec[11],
		}
		if p.err != nil {
			return nil, fmt.Errorf("%s: %w", elementsFile, p.err)
		}
	}
	return rows, nil
}

func (s *Store) LoadSweep(runID string) ([]SweepRow, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, sweepFile), len(sweepHeader))
	if err != nil {
		return nil, err
	}

	rows := make([]SweepRow, len(records))
	for i, rec := range records {
		p := parser{row: i + 1}
		rows[i] = SweepRow{
			Velocity:    p.atof(rec[0]),
			RPM:         p.atof(rec[1]),
			J:           p.atof(rec[2]),
			CT:          p.atof(rec[3]),
			CP:          p.atof(rec[4]),
			Efficiency:  p.atof(rec[5]),
			Thrust:      p.atof(rec[6]),
			Torque:      p.atof(rec[7]),
			Power:       p.atof(rec[8]),
			Unconverged: p.atoi(rec[9]),
			Failed:      p.atoi(rec[10]),
		}
		if p.err != nil {
			return nil, fmt.Errorf("%s: %w", sweepFile, p.err)
		}
	}
	return rows, nil
}
