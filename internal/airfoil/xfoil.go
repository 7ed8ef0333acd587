package airfoil

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ParseXFoil reads a polar in the XFoil/XFLR5 text format.
//
// The Reynolds number comes from the first line containing "Re =" (written
// as mantissa, "e", exponent, e.g. "0.100 e 6"). Rows start after the header
// naming alpha, CL and CD, skip the dashed rule and end at the first blank
// line. Alpha is converted from degrees to radians.
func ParseXFoil(r io.Reader) (*Polar, error) {
	polar := &Polar{}
	haveRe := false
	inTable := false

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()

		if !haveRe && strings.Contains(text, "Re =") {
			re, err := parseReynolds(text)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			polar.Re = re
			haveRe = true
			continue
		}

		if inTable {
			if strings.Contains(text, "---") {
				continue
			}
			fields := strings.Fields(text)
			if len(fields) == 0 {
				break
			}
			if len(fields) < 3 {
				return nil, fmt.Errorf("line %d: expected alpha, CL, CD columns, got %q", line, text)
			}
			vals := [3]float64{}
			for i := 0; i < 3; i++ {
				v, err := strconv.ParseFloat(fields[i], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: column %d: %w", line, i+1, err)
				}
				vals[i] = v
			}
			polar.Alpha = append(polar.Alpha, Deg2Rad(vals[0]))
			polar.CL = append(polar.CL, vals[1])
			polar.CD = append(polar.CD, vals[2])
			continue
		}

		if haveRe && strings.Contains(text, "alpha") && strings.Contains(text, "CL") && strings.Contains(text, "CD") {
			inTable = true
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	if polar.Re == 0 {
		return nil, fmt.Errorf("airfoil: no Reynolds number found")
	}
	if len(polar.Alpha) == 0 {
		return nil, fmt.Errorf("airfoil: Re %g: %w", polar.Re, ErrEmptyPolar)
	}
	if err := polar.Validate(); err != nil {
		return nil, err
	}
	return polar, nil
}

// parseReynolds extracts the value following "Re =" on an XFoil header line.
func parseReynolds(text string) (float64, error) {
	fields := strings.Fields(text)
	for i := 0; i < len(fields); i++ {
		if fields[i] != "Re" {
			continue
		}
		if i+2 >= len(fields) || fields[i+1] != "=" {
			break
		}
		mantissa, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return 0, fmt.Errorf("airfoil: bad Reynolds mantissa %q", fields[i+2])
		}
		exponent := 0.0
		if i+4 < len(fields) && fields[i+3] == "e" {
			exponent, err = strconv.ParseFloat(fields[i+4], 64)
			if err != nil {
				return 0, fmt.Errorf("airfoil: bad Reynolds exponent %q", fields[i+4])
			}
		}
		return mantissa * math.Pow(10, exponent), nil
	}
	return 0, fmt.Errorf("airfoil: malformed Reynolds line %q", strings.TrimSpace(text))
}

// ReadXFoil parses the polar stored at path.
func ReadXFoil(path string) (*Polar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := ParseXFoil(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadXFoil reads one polar per file and returns them as an airfoil sorted
// by Reynolds number.
func LoadXFoil(name string, paths ...string) (*Airfoil, error) {
	if len(paths) == 0 {
		return nil, ErrEmptyAirfoil
	}
	foil := &Airfoil{Name: name, Polars: make([]Polar, 0, len(paths))}
	for _, path := range paths {
		p, err := ReadXFoil(path)
		if err != nil {
			return nil, err
		}
		foil.Polars = append(foil.Polars, *p)
	}
	sort.SliceStable(foil.Polars, func(i, j int) bool {
		return foil.Polars[i].Re < foil.Polars[j].Re
	})
	if err := foil.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return foil, nil
}
