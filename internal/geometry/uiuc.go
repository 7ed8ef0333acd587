package geometry

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/propsim/internal/airfoil"
)

// ParseUIUC reads a UIUC propeller geometry table with r/R, c/R and beta
// (deg) columns. Lines that are not numeric, such as the column header, are
// skipped. Radius and chord are scaled by diameter/2.
func ParseUIUC(r io.Reader, diameter float64, blades int) (*Blade, error) {
	if !(diameter > 0) {
		return nil, fmt.Errorf("geometry: UIUC diameter must be positive, got %g", diameter)
	}
	if blades < 1 {
		return nil, ErrNoBlades
	}
	radius := 0.5 * diameter
	b := &Blade{Blades: blades, Diameter: diameter}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		vals, ok := parseRow(fields)
		if !ok {
			continue
		}
		if len(vals) < 3 {
			return nil, fmt.Errorf("line %d: expected r/R, c/R, beta columns", line)
		}
		b.Stations = append(b.Stations, Station{
			Radius: vals[0] * radius,
			Chord:  vals[1] * radius,
			Twist:  airfoil.Deg2Rad(vals[2]),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if err := checkStations(b.Stations); err != nil {
		return nil, err
	}
	return b, nil
}

// ReadUIUC parses the UIUC geometry file at path.
func ReadUIUC(path string, diameter float64, blades int) (*Blade, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := ParseUIUC(f, diameter, blades)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	b.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return b, nil
}
