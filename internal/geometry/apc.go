package geometry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/propsim/internal/airfoil"
)

// apcColumns is the width of an APC PE0 geometry row.
const apcColumns = 13

// ParseAPC reads the blade table of an APC PE0 performance file.
//
// The table starts after the header naming STATION and MAX-THICK. Rows of
// thirteen numbers give radius (in) in column 0, chord (in) in column 1 and
// twist (deg) in column 7; the table ends at the first row holding a
// non-numeric token. The blade count is read from the BLADES: line.
func ParseAPC(r io.Reader) (*Blade, error) {
	b := &Blade{}
	inTable := false

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		fields := strings.Fields(text)

		if b.Blades == 0 {
			if n, ok, err := bladeCount(fields); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			} else if ok {
				b.Blades = n
			}
		}

		if !inTable {
			if strings.Contains(text, "STATION") && strings.Contains(text, "MAX-THICK") {
				inTable = true
			}
			continue
		}
		if len(fields) <= 2 || strings.Contains(text, "(QUOTED)") || strings.Contains(text, "(LE-TE)") {
			continue
		}

		vals, ok := parseRow(fields)
		if !ok {
			inTable = false
			continue
		}
		if len(vals) != apcColumns {
			continue
		}
		b.Stations = append(b.Stations, Station{
			Radius: vals[0] * inch,
			Chord:  vals[1] * inch,
			Twist:  airfoil.Deg2Rad(vals[7]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if b.Blades == 0 {
		return nil, ErrNoBlades
	}
	if len(b.Stations) < 2 {
		return nil, ErrTooFewStations
	}
	b.Diameter = 2 * b.Stations[len(b.Stations)-1].Radius
	return b, nil
}

func bladeCount(fields []string) (int, bool, error) {
	for i, f := range fields {
		if f != "BLADES:" {
			continue
		}
		if i+1 >= len(fields) {
			return 0, false, fmt.Errorf("geometry: BLADES: without value")
		}
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil || v < 1 {
			return 0, false, fmt.Errorf("geometry: bad blade count %q", fields[i+1])
		}
		return int(v), true, nil
	}
	return 0, false, nil
}

func parseRow(fields []string) ([]float64, bool) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

// ReadAPC parses the PE0 file at path. The blade is named after the file.
func ReadAPC(path string) (*Blade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ParseAPC(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return b, nil
}
