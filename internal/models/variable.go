// ABOUTME: Physical variable enum for simulation frames (pressure, hydroxyl, Mach number)
// ABOUTME: Also used as the "component" selector for image directories and case annotations
package models

import (
	"fmt"
	"strings"
)

// Variable is one physical quantity captured by a frame
type Variable string

const (
	// VariablePressure is the pressure field, written as "p" in filenames
	VariablePressure Variable = "p"
	// VariableOH is the hydroxyl concentration field
	VariableOH Variable = "OH"
	// VariableMach is the Mach number field
	VariableMach Variable = "Mach"
)

// AllVariables lists the variables the catalog partitions on, in display order
func AllVariables() []Variable {
	return []Variable{VariablePressure, VariableOH, VariableMach}
}

// ParseVariable maps user input onto a known variable.
// "P" is accepted as an alias for the lowercase pressure token.
func ParseVariable(s string) (Variable, error) {
	switch strings.TrimSpace(s) {
	case "p", "P":
		return VariablePressure, nil
	case "OH":
		return VariableOH, nil
	case "Mach":
		return VariableMach, nil
	}
	return "", fmt.Errorf("%w: unknown variable %q (want p, OH or Mach)", ErrInvalidRequest, s)
}

// String returns the filename token for the variable
func (v Variable) String() string {
	return string(v)
}

// Valid reports whether v is one of the known variables
func (v Variable) Valid() bool {
	_, err := ParseVariable(string(v))
	return err == nil
}
