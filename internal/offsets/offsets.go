// Package offsets computes the P-variable addresses a homing routine uses to
// save and restore axis state on a controller. The legacy generator reserved a
// bank of 100 P-variables per PLC number and carved it into six fixed fields,
// indexed by the order in which motors were declared across the whole run.
package offsets

import "fmt"

type Field string

const (
	FieldHiLim    Field = "hi_lim"
	FieldLoLim    Field = "lo_lim"
	FieldHomed    Field = "homed"
	FieldNotHomed Field = "not_homed"
	FieldLimFlags Field = "lim_flags"
	FieldPos      Field = "pos"
)

// fieldBase gives each field's start offset within a PLC's P-variable bank.
var fieldBase = map[Field]int{
	FieldHiLim:    4,
	FieldLoLim:    20,
	FieldHomed:    36,
	FieldNotHomed: 52,
	FieldLimFlags: 68,
	FieldPos:      84,
}

// Fields lists the six state fields in bank order.
var Fields = []Field{
	FieldHiLim,
	FieldLoLim,
	FieldHomed,
	FieldNotHomed,
	FieldLimFlags,
	FieldPos,
}

// Offset returns the P-variable number for one field of one motor. index is
// the motor's process-scoped creation index, monotonic across all PLCs in a
// run, which keeps the six 16-slot windows disjoint for up to 16 motors.
func Offset(field Field, plcNum, index int) int {
	return plcNum*100 + fieldBase[field] + index
}

// Nx groups axes into banks of four and returns the two-digit code used to
// select the capture-flag variables that differ between axes 1-4 and 5+ on
// the same controller. Division must truncate toward zero to match the
// legacy runtime; axis numbers are always >= 1 so this is plain integer
// division.
func Nx(axis int) string {
	bank := (axis - 1) / 4
	pos := (axis-1)%4 + 1
	return fmt.Sprintf("%02d", bank*10+pos)
}
