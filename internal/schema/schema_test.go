package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serebryakov7/obdpid/internal/obdcan"
)

const exampleSchema = `
endian: little
modepid:
  0x01:
    0x0c:
      name: Engine RPM
      bytes: 2
      raw-unit: rpm
      si-unit: rad/s
      expr: { type: float, val: "(256*A + B) / 4" }
    0x0d:
      name: Vehicle Speed
      bytes: 1
      raw-unit: km/h
      si-unit: m/s
      expr: { type: float, val: "A" }
    0x0f:
      name: Intake Air Temperature
      bytes: 1
      raw-unit: celsius
      si-unit: K
      expr: { type: float, val: "A" }
  0x22:
    0x1234:
      name: Extended passthrough
      bytes: 1
      raw-unit: percent
      si-unit: percent
`

func TestCompile_Example(t *testing.T) {
	ctx, err := Compile([]byte(exampleSchema))
	require.NoError(t, err)

	assert.False(t, ctx.BigEndian)
	assert.Equal(t, 4, ctx.PIDCount())

	rec, ok := ctx.GetDescriptor(0x01, 0x0C)
	require.True(t, ok)
	assert.Equal(t, "Engine RPM", rec.Name)
	assert.Equal(t, 2, rec.CANBytes)
	assert.NotNil(t, rec.Expr)

	passthroughRec, ok := ctx.GetDescriptor(0x22, 0x1234)
	require.True(t, ok)
	assert.Nil(t, passthroughRec.Expr)
	assert.Equal(t, obdcan.U8, passthroughRec.DataType)
}

func TestCompile_UnknownUnit(t *testing.T) {
	_, err := Compile([]byte(`
endian: little
modepid:
  0x01:
    0x0c:
      name: Bad
      bytes: 1
      raw-unit: furlongs-per-fortnight
      si-unit: x
`))
	assert.Error(t, err)
}

func TestCompile_UnknownKey(t *testing.T) {
	_, err := Compile([]byte(`
endian: little
modepid:
  0x01:
    0x0c:
      name: Bad
      bytes: 1
      raw-unit: rpm
      si-unit: rad/s
      bogus: 1
`))
	assert.Error(t, err)
}

func TestCompile_FloatExpressionAllowsNonFourByteWindows(t *testing.T) {
	// float domain + an actual expression is not the passthrough-float
	// variant, so the can_bytes == 4 rule does not apply to it.
	ctx, err := Compile([]byte(`
endian: little
modepid:
  0x01:
    0x0c:
      name: OK
      bytes: 2
      raw-unit: rpm
      si-unit: rad/s
      expr: { type: float, val: "A" }
`))
	require.NoError(t, err)

	rec, ok := ctx.GetDescriptor(0x01, 0x0C)
	require.True(t, ok)
	assert.Equal(t, 2, rec.CANBytes)
	assert.NotNil(t, rec.Expr)
}

func TestCompile_PassthroughFloatRequiresFourBytes(t *testing.T) {
	// expr.type given with no expr.val selects the passthrough
	// evaluator with an explicit declared type; for float that variant
	// does require can_bytes == 4.
	_, err := Compile([]byte(`
endian: little
modepid:
  0x01:
    0x0c:
      name: Bad
      bytes: 2
      raw-unit: rpm
      si-unit: rad/s
      expr: { type: float }
`))
	assert.Error(t, err)
}

func TestCompile_StandardModePIDTooLarge(t *testing.T) {
	_, err := Compile([]byte(`
endian: little
modepid:
  0x01:
    0x100:
      name: Bad
      bytes: 1
      raw-unit: rpm
      si-unit: rad/s
`))
	assert.Error(t, err)
}

func TestCompileFile_MissingFile(t *testing.T) {
	_, err := CompileFile("/nonexistent/path/schema.yaml")
	assert.Error(t, err)
}
