// Package units provides typed physical quantities expressed in the framework system of units.
//
// The framework base units are the millimetre, the nanosecond, the MeV and the radian. A Quantity keeps
// the value in the unit it was written with, so that `0.5 mm` stays `0.5 mm` when it is rendered back,
// and converts to the base unit only when it has to be compared or combined with another quantity.
package units

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownUnit        = errors.New("unknown unit")
	ErrDimensionMismatch  = errors.New("dimension mismatch")
	ErrMalformedQuantity  = errors.New("malformed quantity")
	ErrMissingUnit        = errors.New("quantity must have a unit")
	ErrUnexpectedNodeKind = errors.New("quantity must be a scalar")
)

// Dimension is the physical dimension of a unit.
type Dimension string

const (
	Length Dimension = "length"
	Time   Dimension = "time"
	Energy Dimension = "energy"
	Angle  Dimension = "angle"
)

// Unit is a named multiple of the base unit of its dimension.
type Unit struct {
	// Symbol is the short name used when parsing and printing.
	Symbol string
	// Name is the identifier of the unit in the framework SystemOfUnits module.
	Name      string
	Dimension Dimension
	// Factor converts a value in this unit into the base unit.
	Factor float64
}

var (
	Micrometer  = Unit{Symbol: "um", Name: "um", Dimension: Length, Factor: 1e-3}
	Millimeter  = Unit{Symbol: "mm", Name: "mm", Dimension: Length, Factor: 1}
	Centimeter  = Unit{Symbol: "cm", Name: "cm", Dimension: Length, Factor: 10}
	Meter       = Unit{Symbol: "m", Name: "m", Dimension: Length, Factor: 1e3}
	Picosecond  = Unit{Symbol: "ps", Name: "picosecond", Dimension: Time, Factor: 1e-3}
	Nanosecond  = Unit{Symbol: "ns", Name: "ns", Dimension: Time, Factor: 1}
	Second      = Unit{Symbol: "s", Name: "s", Dimension: Time, Factor: 1e9}
	MeV         = Unit{Symbol: "MeV", Name: "MeV", Dimension: Energy, Factor: 1}
	GeV         = Unit{Symbol: "GeV", Name: "GeV", Dimension: Energy, Factor: 1e3}
	TeV         = Unit{Symbol: "TeV", Name: "TeV", Dimension: Energy, Factor: 1e6}
	Milliradian = Unit{Symbol: "mrad", Name: "mrad", Dimension: Angle, Factor: 1e-3}
	Radian      = Unit{Symbol: "rad", Name: "rad", Dimension: Angle, Factor: 1}
)

var bySymbol = map[string]Unit{}

func init() {
	for _, u := range []Unit{
		Micrometer, Millimeter, Centimeter, Meter,
		Picosecond, Nanosecond, Second,
		MeV, GeV, TeV,
		Milliradian, Radian,
	} {
		bySymbol[u.Symbol] = u
		bySymbol[u.Name] = u
	}
}

// Lookup returns the unit with the given symbol or framework name.
func Lookup(symbol string) (Unit, error) {
	u, ok := bySymbol[symbol]
	if !ok {
		return Unit{}, errors.Wrapf(ErrUnknownUnit, "%q", symbol)
	}

	return u, nil
}

// Symbols lists every accepted unit spelling, sorted.
func Symbols() []string {
	res := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		res = append(res, s)
	}

	sort.Strings(res)

	return res
}

// Base returns the base unit of a dimension.
func Base(dim Dimension) Unit {
	switch dim {
	case Time:
		return Nanosecond
	case Energy:
		return MeV
	case Angle:
		return Radian
	default:
		return Millimeter
	}
}

// Quantity is a value attached to a unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// New returns value expressed in unit.
func New(value float64, unit Unit) Quantity {
	return Quantity{Value: value, Unit: unit}
}

// Dimension returns the dimension of the quantity's unit.
func (q Quantity) Dimension() Dimension {
	return q.Unit.Dimension
}

// Canonical returns the value in the base unit of the dimension.
func (q Quantity) Canonical() float64 {
	return q.Value * q.Unit.Factor
}

// In converts q into unit. Converting to the same unit returns q untouched.
func (q Quantity) In(unit Unit) (Quantity, error) {
	if q.Unit.Dimension != unit.Dimension {
		return Quantity{}, errors.Wrapf(ErrDimensionMismatch, "cannot convert %s to %s", q.Unit.Dimension, unit.Dimension)
	}

	if q.Unit == unit {
		return q, nil
	}

	return Quantity{Value: q.Value * q.Unit.Factor / unit.Factor, Unit: unit}, nil
}

// Add returns q+o in the unit of q.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	conv, err := o.In(q.Unit)
	if err != nil {
		return Quantity{}, errors.Wrap(err, "unable to add quantities")
	}

	return Quantity{Value: q.Value + conv.Value, Unit: q.Unit}, nil
}

// Sub returns q-o in the unit of q.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	conv, err := o.In(q.Unit)
	if err != nil {
		return Quantity{}, errors.Wrap(err, "unable to subtract quantities")
	}

	return Quantity{Value: q.Value - conv.Value, Unit: q.Unit}, nil
}

// Scale multiplies the value by factor.
func (q Quantity) Scale(factor float64) Quantity {
	return Quantity{Value: q.Value * factor, Unit: q.Unit}
}

// Equal reports whether both quantities describe the same physical amount.
func (q Quantity) Equal(o Quantity) bool {
	return q.Unit.Dimension == o.Unit.Dimension && q.Canonical() == o.Canonical()
}

// IsZero reports whether the quantity has neither value nor unit.
func (q Quantity) IsZero() bool {
	return q.Value == 0 && q.Unit == Unit{}
}

func (q Quantity) String() string {
	return strconv.FormatFloat(q.Value, 'g', -1, 64) + " " + q.Unit.Symbol
}

// Parse reads quantities written as "0.5 mm", "40mm", "-10*mm" or "180 picosecond".
func Parse(s string) (Quantity, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Quantity{}, errors.Wrap(ErrMalformedQuantity, "empty string")
	}

	end := 0
	for end < len(raw) && strings.ContainsRune("+-.0123456789eE", rune(raw[end])) {
		// exponent markers only count when followed by a digit or sign
		if (raw[end] == 'e' || raw[end] == 'E') && (end+1 >= len(raw) || !strings.ContainsRune("+-0123456789", rune(raw[end+1]))) {
			break
		}
		end++
	}

	value, err := strconv.ParseFloat(raw[:end], 64)
	if err != nil {
		return Quantity{}, errors.Wrapf(ErrMalformedQuantity, "%q", s)
	}

	symbol := strings.TrimSpace(raw[end:])
	symbol = strings.TrimSpace(strings.TrimPrefix(symbol, "*"))
	if symbol == "" {
		return Quantity{}, errors.Wrapf(ErrMissingUnit, "%q", s)
	}

	unit, err := Lookup(symbol)
	if err != nil {
		return Quantity{}, err
	}

	return Quantity{Value: value, Unit: unit}, nil
}

// MustParse is like Parse but panics on error. It is meant for literals.
func MustParse(s string) Quantity {
	q, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return q
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (q *Quantity) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Wrapf(ErrUnexpectedNodeKind, "line %d", node.Line)
	}

	parsed, err := Parse(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}

	*q = parsed

	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (q Quantity) MarshalYAML() (interface{}, error) {
	return q.String(), nil
}
