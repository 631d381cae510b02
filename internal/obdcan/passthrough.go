package obdcan

import (
	"math"

	"github.com/serebryakov7/obdpid/internal/expr"
)

// evaluate dispatches a PID's data window to its compiled expression
// or, when none was given, to the passthrough ("nop") evaluator
// (spec.md §4.3).
func evaluate(bigEndian bool, rec *PIDRecord, data []byte) (float64, error) {
	if rec.Expr != nil {
		return expr.Evaluate(rec.Expr, data)
	}
	return passthrough(bigEndian, rec.DataType, data), nil
}

// passthrough interprets data as a single unsigned integer of
// len(data) bytes under the given endianness, except when dataType is
// FLOAT (always 4 bytes), where the assembled bit pattern is
// reinterpreted as IEEE-754. Big-endian treats data[0] as the most
// significant byte, including in the 3-byte case — spec.md §9 flags a
// visible 3-byte big-endian typo in the original this is ported from;
// this implementation follows the corrected rule, not the typo.
func passthrough(bigEndian bool, dataType DataType, data []byte) float64 {
	v := assembleUint32(data, bigEndian)

	if dataType == FLOAT {
		return float64(math.Float32frombits(v))
	}
	return float64(v)
}

func assembleUint32(data []byte, bigEndian bool) uint32 {
	var v uint32
	if bigEndian {
		for _, b := range data {
			v = v<<8 | uint32(b)
		}
	} else {
		for i := len(data) - 1; i >= 0; i-- {
			v = v<<8 | uint32(data[i])
		}
	}
	return v
}
