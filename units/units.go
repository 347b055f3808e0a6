// Package units models the small set of physical quantities a Compound may
// carry (mass, volume, amount-of-substance) alongside its identifiers.
//
// This is deliberately minimal: it is a peripheral data-class concern, not
// part of resolution logic, and no dimensional-analysis library (the
// ecosystem equivalent of Python's pint, used by
// original_source/pura/units.py) is available, so these are plain,
// unchecked value types rather than a ported unit system - see DESIGN.md.
package units

import "fmt"

// MassUnit enumerates the mass units a Mass value may be expressed in.
type MassUnit string

// Supported mass units.
const (
	Milligram MassUnit = "mg"
	Gram      MassUnit = "g"
	Kilogram  MassUnit = "kg"
)

// Mass is an amount of mass in a given unit.
type Mass struct {
	Value float64
	Unit  MassUnit
}

func (m Mass) String() string { return fmt.Sprintf("%g%s", m.Value, m.Unit) }

// VolumeUnit enumerates the volume units a Volume value may be expressed in.
type VolumeUnit string

// Supported volume units.
const (
	Microlitre VolumeUnit = "uL"
	Millilitre VolumeUnit = "mL"
	Litre      VolumeUnit = "L"
)

// Volume is an amount of volume in a given unit.
type Volume struct {
	Value float64
	Unit  VolumeUnit
}

func (v Volume) String() string { return fmt.Sprintf("%g%s", v.Value, v.Unit) }

// AmountUnit enumerates the amount-of-substance units an Amount value may be
// expressed in.
type AmountUnit string

// Supported amount-of-substance units.
const (
	Nanomole  AmountUnit = "nmol"
	Micromole AmountUnit = "umol"
	Millimole AmountUnit = "mmol"
	Mole      AmountUnit = "mol"
)

// Amount is an amount of substance in a given unit.
type Amount struct {
	Value float64
	Unit  AmountUnit
}

func (a Amount) String() string { return fmt.Sprintf("%g%s", a.Value, a.Unit) }
