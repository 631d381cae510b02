// Package schema implements the schema compiler (spec.md §4.4): it
// reads a structured document (mapping/scalar tree) describing how
// each (mode, pid) pair maps CAN payload bytes to a physical
// quantity, and builds an immutable obdcan.Context from it.
//
// The document tree reader is gopkg.in/yaml.v3's *yaml.Node, used
// directly as the "standard document-tree reader" spec.md treats as
// an external collaborator with a named interface only.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/serebryakov7/obdpid/internal/errs"
	"github.com/serebryakov7/obdpid/internal/expr"
	"github.com/serebryakov7/obdpid/internal/obdcan"
	"github.com/serebryakov7/obdpid/internal/units"
)

// DefaultSchemaDir is the compile-time default schema directory used
// when CompileFile is given a bare filename (spec.md §6).
const DefaultSchemaDir = "/etc/obdpid/schemas"

// CompileFile resolves path relative to DefaultSchemaDir when it
// contains no path separator, opens it, and compiles it into a
// Context.
func CompileFile(path string) (*obdcan.Context, error) {
	if path == "" {
		return nil, errs.New(errs.InvalidPath, "empty schema path")
	}

	resolved := path
	if !strings.ContainsRune(path, os.PathSeparator) && !strings.ContainsRune(path, '/') {
		resolved = filepath.Join(DefaultSchemaDir, path)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, errs.Wrap(errs.CannotOpenFile, err, "opening schema %q", resolved)
	}

	return Compile(data)
}

// Compile parses the raw document bytes and builds a Context
// (spec.md §4.4). Fatal schema-shape problems (unknown keys, an
// unresolved unit, an invalid expression) are returned as errors
// rather than panicking: the schema compiler is a user-facing entry
// point, even though the invariants it enforces are, once broken,
// programmer/schema-author bugs (spec.md §7).
func Compile(data []byte) (*obdcan.Context, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errs.Wrap(errs.ParseFail, err, "parsing schema document")
	}
	if len(root.Content) == 0 {
		return nil, errs.New(errs.ParseFail, "empty schema document")
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, errs.New(errs.ParseFail, "top-level schema document must be a mapping")
	}

	c := &compiler{
		pids:    make(map[uint32]*obdcan.PIDRecord),
		siUnits: make(map[obdcan.UnitID]string),
		siIDs:   make(map[string]obdcan.UnitID),
	}

	for i := 0; i < len(top.Content); i += 2 {
		key := top.Content[i].Value
		val := top.Content[i+1]

		switch key {
		case "endian":
			switch val.Value {
			case "big":
				c.bigEndian = true
			case "little":
				c.bigEndian = false
			default:
				return nil, errs.New(errs.ParseFail, "endian must be \"big\" or \"little\", got %q", val.Value)
			}
		case "modepid":
			if err := c.compileModePID(val); err != nil {
				return nil, err
			}
		default:
			return nil, errs.New(errs.ParseFail, "unknown top-level key %q", key)
		}
	}

	return obdcan.NewContext(c.bigEndian, c.pids, c.siUnits), nil
}

type compiler struct {
	bigEndian bool
	pids      map[uint32]*obdcan.PIDRecord
	siUnits   map[obdcan.UnitID]string
	siIDs     map[string]obdcan.UnitID
}

func (c *compiler) compileModePID(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errs.New(errs.ParseFail, "modepid must be a mapping")
	}

	for i := 0; i < len(node.Content); i += 2 {
		modeKey := node.Content[i]
		modeVal := node.Content[i+1]

		mode, err := parseNumericKey(modeKey.Value)
		if err != nil {
			return errs.Wrap(errs.ParseFail, err, "parsing mode key %q", modeKey.Value)
		}

		if modeVal.Kind != yaml.MappingNode {
			return errs.New(errs.ParseFail, "mode %#x entry must be a mapping of pid -> pid block", mode)
		}

		for j := 0; j < len(modeVal.Content); j += 2 {
			pidKey := modeVal.Content[j]
			pidVal := modeVal.Content[j+1]

			pid, err := parseNumericKey(pidKey.Value)
			if err != nil {
				return errs.Wrap(errs.ParseFail, err, "parsing pid key %q", pidKey.Value)
			}

			if obdcan.SAE(mode) && pid > 0xFF {
				return errs.New(errs.InvalidPID, "mode %#x is SAE-standard, pid %#x exceeds 0xFF", mode, pid)
			}

			rec, err := c.compilePIDBlock(pidVal)
			if err != nil {
				return errs.Wrap(errs.ParseFail, err, "mode %#x pid %#x", mode, pid)
			}

			c.pids[obdcan.Key(mode, pid)] = rec
		}
	}

	return nil
}

func parseNumericKey(s string) (int, error) {
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (c *compiler) compilePIDBlock(node *yaml.Node) (*obdcan.PIDRecord, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errs.New(errs.ParseFail, "pid block must be a mapping")
	}

	rec := &obdcan.PIDRecord{}
	var exprType, exprVal string
	var hasExpr, hasExprVal bool

	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := node.Content[i+1]

		switch key {
		case "name":
			rec.Name = val.Value
		case "bytes":
			n, err := strconv.Atoi(val.Value)
			if err != nil || n < 1 || n > 4 {
				return nil, errs.New(errs.InvalidParameter, "bytes must be an integer in 1..4, got %q", val.Value)
			}
			rec.CANBytes = n
		case "raw-unit":
			fn, ok := units.Lookup(val.Value)
			if !ok {
				return nil, errs.New(errs.UnknownUnit, "unknown raw-unit %q", val.Value)
			}
			rec.Convert = fn
		case "si-unit":
			rec.UnitID = c.internSIUnit(val.Value)
		case "expr":
			hasExpr = true
			for k := 0; k < len(val.Content); k += 2 {
				subKey := val.Content[k].Value
				subVal := val.Content[k+1]
				switch subKey {
				case "type":
					exprType = subVal.Value
				case "val":
					exprVal = subVal.Value
					hasExprVal = true
				default:
					return nil, errs.New(errs.ParseFail, "unknown expr sub-key %q", subKey)
				}
			}
		default:
			return nil, errs.New(errs.ParseFail, "unknown pid key %q", key)
		}
	}

	if rec.Convert == nil {
		return nil, errs.New(errs.UnknownUnit, "pid block %q has no raw-unit", rec.Name)
	}
	if rec.CANBytes == 0 {
		return nil, errs.New(errs.InvalidParameter, "pid block %q has no bytes", rec.Name)
	}

	switch {
	case hasExpr && hasExprVal:
		dataType, domain, err := parseExprType(exprType)
		if err != nil {
			return nil, err
		}
		rec.DataType = dataType

		if err := validateBytesForExprType(dataType, rec.CANBytes); err != nil {
			return nil, err
		}

		compiled, err := expr.Compile(exprVal, domain)
		if err != nil {
			return nil, errs.Wrap(errs.ParseFail, err, "compiling expr %q", exprVal)
		}
		rec.Expr = compiled

	case hasExpr && !hasExprVal:
		// expr.type given with no expr.val: passthrough evaluator
		// with an explicitly declared numeric domain (used for the
		// passthrough-float variant, which spec.md requires
		// bytes == 4 for).
		dataType, _, err := parseExprType(exprType)
		if err != nil {
			return nil, err
		}
		rec.DataType = dataType
		if err := validateBytesForType(dataType, rec.CANBytes); err != nil {
			return nil, err
		}

	default:
		// No expr block at all: passthrough evaluator, plain
		// unsigned reading, domain implied by bytes.
		rec.DataType = passthroughTypeForWidth(rec.CANBytes)
	}

	return rec, nil
}

func passthroughTypeForWidth(canBytes int) obdcan.DataType {
	switch canBytes {
	case 1:
		return obdcan.U8
	case 2:
		return obdcan.U16
	default:
		return obdcan.U32
	}
}

func parseExprType(t string) (obdcan.DataType, expr.Domain, error) {
	switch t {
	case "uint8":
		return obdcan.U8, expr.Int, nil
	case "int8":
		return obdcan.I8, expr.Int, nil
	case "uint16":
		return obdcan.U16, expr.Int, nil
	case "int16":
		return obdcan.I16, expr.Int, nil
	case "uint32":
		return obdcan.U32, expr.Int, nil
	case "int32":
		return obdcan.I32, expr.Int, nil
	case "float":
		return obdcan.FLOAT, expr.Float, nil
	default:
		return 0, 0, errs.New(errs.ParseFail, "unknown expr type %q", t)
	}
}

// validateBytesForType checks the passthrough-evaluator width rules
// (spec.md §3/§4.4): the passthrough evaluator reinterprets the whole
// data window as a single value of type t, so the window width must
// fit t: exactly 4 bytes for float (the IEEE-754 case), exactly 1 for
// the 8-bit types, 1 or 2 for the 16-bit types, 1..4 for the 32-bit
// types.
func validateBytesForType(t obdcan.DataType, canBytes int) error {
	switch t {
	case obdcan.FLOAT:
		if canBytes != 4 {
			return errs.New(errs.InvalidParameter, "float domain requires bytes == 4, got %d", canBytes)
		}
	case obdcan.U8, obdcan.I8:
		if canBytes != 1 {
			return errs.New(errs.InvalidParameter, "uint8/int8 domain requires bytes == 1, got %d", canBytes)
		}
	case obdcan.U16, obdcan.I16:
		if canBytes != 1 && canBytes != 2 {
			return errs.New(errs.InvalidParameter, "uint16/int16 domain requires bytes in {1,2}, got %d", canBytes)
		}
	case obdcan.U32, obdcan.I32:
		if canBytes < 1 || canBytes > 4 {
			return errs.New(errs.InvalidParameter, "uint32/int32 domain requires bytes in 1..4, got %d", canBytes)
		}
	default:
		return fmt.Errorf("schema: unknown data type %d", t)
	}
	return nil
}

// validateBytesForExprType checks the (looser) width rule that
// applies when an expression evaluates the data window: the window is
// just the byte range the expression's variable tokens index into, not
// a single value reinterpreted as t, so float expressions are not
// pinned to exactly 4 bytes the way passthrough-float is (spec.md §4.4
// scopes the can_bytes==4 rule to "float domain and passthrough
// evaluator together").
func validateBytesForExprType(t obdcan.DataType, canBytes int) error {
	switch t {
	case obdcan.FLOAT, obdcan.U8, obdcan.I8, obdcan.U16, obdcan.I16, obdcan.U32, obdcan.I32:
		if canBytes < 1 || canBytes > 4 {
			return errs.New(errs.InvalidParameter, "expr domain requires bytes in 1..4, got %d", canBytes)
		}
	default:
		return fmt.Errorf("schema: unknown data type %d", t)
	}
	return nil
}

func (c *compiler) internSIUnit(name string) obdcan.UnitID {
	if id, ok := c.siIDs[name]; ok {
		return id
	}
	id := obdcan.UnitID(len(c.siIDs) + 1)
	c.siIDs[name] = id
	c.siUnits[id] = name
	return id
}
