package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndEvaluate_Float(t *testing.T) {
	cases := []struct {
		name string
		src  string
		data []byte
		want float64
	}{
		{"engine rpm", "(256*A + B) / 4", []byte{77, 130, 0, 0}, 4960.5},
		// float domain evaluates in float32: 52651/100 rounds to the
		// float32 nearest 526.51.
		{"maf", "(256*A + B) / 100", []byte{205, 171, 0, 0}, float64(float32(526.51))},
		{"identity speed", "A", []byte{60, 0, 0, 0}, 60},
		{"precedence", "2 + 3*4", []byte{0, 0, 0, 0}, 14},
		{"left assoc sub", "10 - 2 - 3", []byte{0, 0, 0, 0}, 5},
		{"negative literal", "A + -5", []byte{10, 0, 0, 0}, 5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := Compile(c.src, Float)
			require.NoError(t, err)
			got, err := Evaluate(e, c.data)
			require.NoError(t, err)
			assert.InDelta(t, c.want, got, 1e-6)
		})
	}
}

func TestCompileAndEvaluate_Int(t *testing.T) {
	e, err := Compile("A*2 + B", Int)
	require.NoError(t, err)
	got, err := Evaluate(e, []byte{10, 5, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, float64(25), got)
}

func TestCompile_UnmatchedParens(t *testing.T) {
	_, err := Compile("(A + B", Float)
	assert.Error(t, err)

	_, err = Compile("A + B)", Float)
	assert.Error(t, err)
}

func TestCompile_InvalidByte(t *testing.T) {
	_, err := Compile("A + Z", Float)
	assert.Error(t, err)
}

func TestLex_UnaryMinusVsSubtraction(t *testing.T) {
	toks, err := lex("A - -5")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, lexVar, toks[0].kind)
	assert.Equal(t, lexSub, toks[1].kind)
	assert.Equal(t, lexNumber, toks[2].kind)
	assert.Equal(t, "-5", toks[2].text)
}
