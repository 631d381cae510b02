// Package obdcan implements the CAN codec (spec.md §4.5) and the
// Context & lookup public handle (spec.md §4.6). A Context is built
// once by internal/schema and is immutable from that point on: every
// operation in this package is a pure function of its arguments plus
// a frozen Context, so a Context may be shared across goroutines
// without synchronization (spec.md §5).
package obdcan

import "github.com/serebryakov7/obdpid/internal/expr"

// DataType is the numeric domain of a PID's expression. The
// passthrough evaluator takes its width from the data window and uses
// DataType only to reinterpret the bits as IEEE-754 when it is FLOAT.
type DataType int

const (
	U8 DataType = iota
	I8
	U16
	I16
	U32
	I32
	FLOAT
)

// UnitID is an interned small integer identifying an SI unit produced
// by a PID's convert function.
type UnitID int

// PIDRecord describes how to build/decode one (mode, pid) pair.
type PIDRecord struct {
	Name        string
	CANBytes    int
	DataType    DataType
	UnitID      UnitID
	Convert     func(float64) float64
	Expr        *expr.Expression // nil selects the passthrough evaluator
}

// Key packs (mode, pid) into the 32-bit lookup key spec.md §3 calls
// for: (mode<<16)|pid.
func Key(mode, pid int) uint32 {
	return (uint32(mode) << 16) | uint32(pid)
}

// Context is the top-level handle: the endianness flag, the
// (mode,pid)-keyed PID table, and the interned SI-unit id->name
// mapping. Built once by internal/schema, never mutated afterward.
type Context struct {
	BigEndian bool
	pids      map[uint32]*PIDRecord
	siUnits   map[UnitID]string
}

// NewContext is used by internal/schema while compiling; callers of
// this package only ever see a finished, frozen *Context.
func NewContext(bigEndian bool, pids map[uint32]*PIDRecord, siUnits map[UnitID]string) *Context {
	return &Context{BigEndian: bigEndian, pids: pids, siUnits: siUnits}
}

// SIUnitName resolves an interned SI-unit id back to the name it was
// assigned from (the si-unit string seen in the schema).
func (c *Context) SIUnitName(id UnitID) (string, bool) {
	name, ok := c.siUnits[id]
	return name, ok
}

// GetDescriptor performs the O(1) (mode,pid) -> *PIDRecord lookup.
func (c *Context) GetDescriptor(mode, pid int) (*PIDRecord, bool) {
	rec, ok := c.pids[Key(mode, pid)]
	return rec, ok
}

// PIDCount returns the number of distinct (mode,pid) pairs.
func (c *Context) PIDCount() int {
	return len(c.pids)
}

// ForEach iterates the (mode,pid) table in unspecified order. The
// callback returns true to continue, false to stop early.
func (c *Context) ForEach(fn func(mode, pid int, rec *PIDRecord) bool) {
	for key, rec := range c.pids {
		mode := int(key >> 16)
		pid := int(key & 0xFFFF)
		if !fn(mode, pid, rec) {
			return
		}
	}
}
