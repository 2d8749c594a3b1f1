package model

import "github.com/askiada/go-jobopts/pkg/units"

// ValueType is the closed set of types a descriptor property can hold.
type ValueType string

const (
	BoolType       ValueType = "bool"
	IntType        ValueType = "int"
	FloatType      ValueType = "float"
	StringType     ValueType = "string"
	IntListType    ValueType = "[]int"
	StringListType ValueType = "[]string"
	LengthType     ValueType = "length"
	TimeType       ValueType = "time"
	EnergyType     ValueType = "energy"
	AngleType      ValueType = "angle"
	LevelType      ValueType = "level"
	// ToolType properties hold another descriptor of kind tool.
	ToolType ValueType = "tool"
)

// Dimension returns the physical dimension carried by quantity types.
func (v ValueType) Dimension() (units.Dimension, bool) {
	switch v {
	case LengthType:
		return units.Length, true
	case TimeType:
		return units.Time, true
	case EnergyType:
		return units.Energy, true
	case AngleType:
		return units.Angle, true
	default:
		return "", false
	}
}
