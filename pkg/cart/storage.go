package cart

import (
	"fmt"
	"strings"
)

// Storage describes how a program variable is laid out in the ROM image.
// It is implemented by ScalarReservation and StaticTable only.
type Storage interface {
	storage()
}

// ScalarReservation reserves Count bytes in zero page.
//
//	score = rs(1)
//	        ^^^^^  ScalarReservation{Count: 1}
type ScalarReservation struct {
	Count int
}

func (ScalarReservation) storage() {}

// StaticTable is a labeled byte table placed in the data bank.
//
//	palette = [0x0F, 0x30, 0x16]
//	          ^^^^^^^^^^^^^^^^^^  StaticTable{Values: {0x0F, 0x30, 0x16}}
type StaticTable struct {
	Values []byte
}

func (StaticTable) storage() {}

// bytesPerLine is the maximum number of values on one .db line.
const bytesPerLine = 16

// dbLines renders values as .db lines, 16 per line.
func dbLines(values []byte) string {
	var sb strings.Builder
	for i := 0; i < len(values); i += bytesPerLine {
		end := i + bytesPerLine
		if end > len(values) {
			end = len(values)
		}
		hexes := make([]string, 0, end-i)
		for _, v := range values[i:end] {
			hexes = append(hexes, fmt.Sprintf("$%02X", v))
		}
		sb.WriteString("  .db ")
		sb.WriteString(strings.Join(hexes, ","))
		sb.WriteString("\n")
	}
	return sb.String()
}
