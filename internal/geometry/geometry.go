// Package geometry turns blade descriptions into solver rotors.
package geometry

import (
	"errors"
	"fmt"

	"github.com/san-kum/propsim/internal/airfoil"
	"github.com/san-kum/propsim/internal/qprop"
)

const inch = 0.0254

var (
	ErrTooFewStations = errors.New("geometry: need at least two stations")
	ErrRadiusOrder    = errors.New("geometry: station radii not strictly increasing")
	ErrNoBlades       = errors.New("geometry: blade count not found")
)

// Station is one measured blade section.
type Station struct {
	Radius float64 // m
	Chord  float64 // m
	Twist  float64 // rad
}

// Blade is a parsed geometry before it is discretised into elements.
type Blade struct {
	Name     string
	Blades   int
	Diameter float64 // m; 0 means twice the outermost station radius
	Stations []Station
}

func checkStations(st []Station) error {
	if len(st) < 2 {
		return ErrTooFewStations
	}
	for i := 1; i < len(st); i++ {
		if !(st[i].Radius > st[i-1].Radius) {
			return fmt.Errorf("%w: r[%d]=%g after %g", ErrRadiusOrder, i, st[i].Radius, st[i-1].Radius)
		}
	}
	for i, s := range st {
		if !(s.Chord > 0) {
			return fmt.Errorf("geometry: station %d: chord must be positive, got %g", i, s.Chord)
		}
	}
	return nil
}

// FromStations builds a rotor with one element between each pair of
// consecutive stations: radius, chord and twist are averaged and the width
// is the radial spacing. A non-positive diameter defaults to twice the last
// station radius.
func FromStations(name string, blades int, diameter float64, stations []Station, foil *airfoil.Airfoil) (*qprop.Rotor, error) {
	if err := checkStations(stations); err != nil {
		return nil, err
	}
	if diameter <= 0 {
		diameter = 2 * stations[len(stations)-1].Radius
	}

	elems := make([]qprop.Element, 0, len(stations)-1)
	for i := 1; i < len(stations); i++ {
		prev, cur := stations[i-1], stations[i]
		elems = append(elems, qprop.Element{
			Radius:  0.5 * (cur.Radius + prev.Radius),
			Chord:   0.5 * (cur.Chord + prev.Chord),
			Twist:   0.5 * (cur.Twist + prev.Twist),
			Width:   cur.Radius - prev.Radius,
			Airfoil: foil,
		})
	}
	return &qprop.Rotor{Name: name, Diameter: diameter, Blades: blades, Elements: elems}, nil
}

// ElementsAtStations builds a rotor with one element centred on each
// station. Widths are central differences, one-sided at both ends. A
// non-positive diameter is taken from the outer edge of the last element.
func ElementsAtStations(name string, blades int, diameter float64, stations []Station, foil *airfoil.Airfoil) (*qprop.Rotor, error) {
	if err := checkStations(stations); err != nil {
		return nil, err
	}
	n := len(stations)
	elems := make([]qprop.Element, n)
	for i, s := range stations {
		var w float64
		switch i {
		case 0:
			w = stations[1].Radius - stations[0].Radius
		case n - 1:
			w = stations[n-1].Radius - stations[n-2].Radius
		default:
			w = 0.5 * (stations[i+1].Radius - stations[i-1].Radius)
		}
		elems[i] = qprop.Element{Radius: s.Radius, Chord: s.Chord, Twist: s.Twist, Width: w, Airfoil: foil}
	}
	if diameter <= 0 {
		diameter = 2 * (stations[n-1].Radius + 0.5*elems[n-1].Width)
	}
	return &qprop.Rotor{Name: name, Diameter: diameter, Blades: blades, Elements: elems}, nil
}

// Rotor discretises the blade with FromStations.
func (b *Blade) Rotor(foil *airfoil.Airfoil) (*qprop.Rotor, error) {
	r, err := FromStations(b.Name, b.Blades, b.Diameter, b.Stations, foil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name, err)
	}
	return r, nil
}

// Refined returns a copy of the blade resampled to n stations.
func (b *Blade) Refined(n int) (*Blade, error) {
	st, err := Refine(b.Stations, n)
	if err != nil {
		return nil, err
	}
	out := *b
	out.Stations = st
	return &out, nil
}

// Refine resamples stations to n radii equally spaced between the first and
// last station, interpolating chord and twist linearly. Both end stations
// are reproduced exactly.
func Refine(stations []Station, n int) ([]Station, error) {
	if err := checkStations(stations); err != nil {
		return nil, err
	}
	if n < 2 {
		return nil, fmt.Errorf("geometry: refine to %d stations: %w", n, ErrTooFewStations)
	}

	first, last := stations[0], stations[len(stations)-1]
	step := (last.Radius - first.Radius) / float64(n-1)
	out := make([]Station, n)
	seg := 1
	for i := 0; i < n; i++ {
		if i == 0 {
			out[i] = first
			continue
		}
		if i == n-1 {
			out[i] = last
			continue
		}
		r := first.Radius + float64(i)*step
		for seg < len(stations)-1 && r > stations[seg].Radius {
			seg++
		}
		lo, hi := stations[seg-1], stations[seg]
		t := (r - lo.Radius) / (hi.Radius - lo.Radius)
		out[i] = Station{
			Radius: r,
			Chord:  (1-t)*lo.Chord + t*hi.Chord,
			Twist:  (1-t)*lo.Twist + t*hi.Twist,
		}
	}
	return out, nil
}
