package keypad

import (
	"errors"
	"fmt"
)

const (
	Rows    = 4
	Columns = 3
)

// Keys maps (row, column) to the character printed on the key.
var Keys = [Rows][Columns]byte{
	{'1', '2', '3'},
	{'4', '5', '6'},
	{'7', '8', '9'},
	{'*', '0', '#'},
}

// Phase selects which half of the matrix is driven during a scan.
type Phase int

const (
	// PhaseRow drives the column lines low and reads the rows.
	PhaseRow Phase = iota
	// PhaseColumn drives the row lines low and reads the columns.
	PhaseColumn
)

func (p Phase) String() string {
	switch p {
	case PhaseRow:
		return "row"
	case PhaseColumn:
		return "column"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Idle is the port value read while no key is pressed in this phase.
func (p Phase) Idle() uint8 {
	if p == PhaseRow {
		return 0xF1
	}
	return 0x0F
}

// Port bit layout: bit 0 is the request line, bits 1-3 the columns
// (column 2 on bit 1), bits 4-7 the rows (row 0 on bit 4).
var rowPatterns = map[uint8]int{
	0xE1: 0,
	0xD1: 1,
	0xB1: 2,
	0x71: 3,
}

var columnPatterns = map[uint8]int{
	0x07: 0,
	0x0B: 1,
	0x0D: 2,
}

// ErrUnrecognizedScanPattern is returned when a port value matches no key
// position. Callers keep the previously decoded position.
var ErrUnrecognizedScanPattern = errors.New("unrecognized scan pattern")

// DecodeRow resolves a row-phase port value to a row index.
func DecodeRow(value uint8) (int, error) {
	if row, ok := rowPatterns[value]; ok {
		return row, nil
	}
	return 0, fmt.Errorf("row 0x%02X: %w", value, ErrUnrecognizedScanPattern)
}

// DecodeColumn resolves a column-phase port value to a column index.
func DecodeColumn(value uint8) (int, error) {
	if col, ok := columnPatterns[value]; ok {
		return col, nil
	}
	return 0, fmt.Errorf("column 0x%02X: %w", value, ErrUnrecognizedScanPattern)
}
